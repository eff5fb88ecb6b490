package service

import (
	"github.com/jeetlabs/jeetbot/internal/models"
)

// TierResolver maps a member's role names to their access tier. Resolution is
// done per request and never cached; role edits in the guild take effect on
// the next command.
type TierResolver struct {
	bindings map[models.Tier]string
}

func NewTierResolver(bindings map[models.Tier]string) *TierResolver {
	return &TierResolver{bindings: bindings}
}

// Resolve returns the highest tier whose bound role appears in roleNames.
// ok is false when no binding matches, which means no access at all.
func (r *TierResolver) Resolve(roleNames []string) (models.Tier, bool) {
	held := make(map[string]struct{}, len(roleNames))
	for _, name := range roleNames {
		held[name] = struct{}{}
	}
	for _, tier := range models.TiersByPrecedence {
		binding, ok := r.bindings[tier]
		if !ok || binding == "" {
			continue
		}
		if _, ok := held[binding]; ok {
			return tier, true
		}
	}
	return "", false
}
