package service

import (
	"fmt"

	"github.com/jeetlabs/jeetbot/internal/models"
)

// QuotaTable is the static (tier, service) → quantity mapping. A quantity of
// zero means the tier may not use the service at all; a missing pair is a
// configuration bug caught at construction, not at request time.
type QuotaTable struct {
	quotas map[models.Tier]map[models.Service]int
}

func NewQuotaTable(quotas map[models.Tier]map[models.Service]int) (*QuotaTable, error) {
	for _, tier := range models.TiersByPrecedence {
		row, ok := quotas[tier]
		if !ok {
			return nil, fmt.Errorf("quota table: missing tier %q", tier)
		}
		for _, service := range models.Services {
			quantity, ok := row[service]
			if !ok {
				return nil, fmt.Errorf("quota table: missing quota for tier %q service %q", tier, service)
			}
			if quantity < 0 {
				return nil, fmt.Errorf("quota table: negative quota for tier %q service %q", tier, service)
			}
		}
	}
	return &QuotaTable{quotas: quotas}, nil
}

// Quantity returns the order quantity granted to tier for service; zero means
// the service is unavailable for that tier.
func (t *QuotaTable) Quantity(tier models.Tier, service models.Service) int {
	return t.quotas[tier][service]
}

// Rows returns a copy of the full table for inspection endpoints.
func (t *QuotaTable) Rows() map[models.Tier]map[models.Service]int {
	out := make(map[models.Tier]map[models.Service]int, len(t.quotas))
	for tier, row := range t.quotas {
		copied := make(map[models.Service]int, len(row))
		for service, quantity := range row {
			copied[service] = quantity
		}
		out[tier] = copied
	}
	return out
}
