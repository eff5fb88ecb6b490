package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeetlabs/jeetbot/internal/models"
)

func testBindings() map[models.Tier]string {
	return map[models.Tier]string{
		models.TierFree:   "Free",
		models.TierBronze: "Bronze",
		models.TierSilver: "Silver",
	}
}

func TestTierResolver_Resolve(t *testing.T) {
	resolver := NewTierResolver(testBindings())

	cases := []struct {
		name  string
		roles []string
		want  models.Tier
		ok    bool
	}{
		{"no roles", nil, "", false},
		{"unrelated roles", []string{"Moderator", "Booster"}, "", false},
		{"free only", []string{"Free"}, models.TierFree, true},
		{"bronze only", []string{"Bronze"}, models.TierBronze, true},
		{"silver beats bronze", []string{"Bronze", "Silver"}, models.TierSilver, true},
		{"bronze beats free", []string{"Free", "Bronze", "Moderator"}, models.TierBronze, true},
		{"order of roles irrelevant", []string{"Silver", "Free"}, models.TierSilver, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tier, ok := resolver.Resolve(tc.roles)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, tier)
		})
	}
}

func TestTierResolver_RoleNamesAreCaseSensitive(t *testing.T) {
	resolver := NewTierResolver(testBindings())

	_, ok := resolver.Resolve([]string{"silver"})
	assert.False(t, ok, "role names are compared exactly as configured")
}
