package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeetlabs/jeetbot/internal/models"
)

func testQuotas() map[models.Tier]map[models.Service]int {
	return map[models.Tier]map[models.Service]int{
		models.TierFree:   {models.ServiceViews: 100, models.ServiceLikes: 10, models.ServiceShares: 10, models.ServiceFollows: 0},
		models.TierBronze: {models.ServiceViews: 3000, models.ServiceLikes: 200, models.ServiceShares: 200, models.ServiceFollows: 0},
		models.TierSilver: {models.ServiceViews: 7000, models.ServiceLikes: 500, models.ServiceShares: 500, models.ServiceFollows: 0},
	}
}

func TestNewQuotaTable_Valid(t *testing.T) {
	table, err := NewQuotaTable(testQuotas())
	require.NoError(t, err)

	assert.Equal(t, 3000, table.Quantity(models.TierBronze, models.ServiceViews))
	assert.Equal(t, 10, table.Quantity(models.TierFree, models.ServiceLikes))
	assert.Equal(t, 0, table.Quantity(models.TierSilver, models.ServiceFollows))
}

func TestNewQuotaTable_MissingTier(t *testing.T) {
	quotas := testQuotas()
	delete(quotas, models.TierBronze)

	_, err := NewQuotaTable(quotas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing tier")
}

func TestNewQuotaTable_MissingService(t *testing.T) {
	quotas := testQuotas()
	delete(quotas[models.TierSilver], models.ServiceShares)

	_, err := NewQuotaTable(quotas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing quota")
}

func TestNewQuotaTable_NegativeQuantity(t *testing.T) {
	quotas := testQuotas()
	quotas[models.TierFree][models.ServiceViews] = -1

	_, err := NewQuotaTable(quotas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative quota")
}

func TestQuotaTable_RowsIsACopy(t *testing.T) {
	table, err := NewQuotaTable(testQuotas())
	require.NoError(t, err)

	rows := table.Rows()
	rows[models.TierFree][models.ServiceViews] = 999999

	assert.Equal(t, 100, table.Quantity(models.TierFree, models.ServiceViews))
}
