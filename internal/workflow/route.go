package workflow

import (
	"fmt"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
)

// RouteRule is the default approval route template for an importance level:
// the ordered roles a transaction passes through, and how long the current
// approver may sit on it before an escalation timer fires.
type RouteRule struct {
	Roles           []string
	EscalationHours int
}

var routeRules = map[models.Importance]RouteRule{
	models.ImportanceLow: {
		Roles:           []string{models.RoleManager},
		EscalationHours: 48,
	},
	models.ImportanceMedium: {
		Roles:           []string{models.RoleManager, models.RoleViceManager},
		EscalationHours: 24,
	},
	models.ImportanceHigh: {
		Roles:           []string{models.RoleManager, models.RoleViceManager, models.RoleDirector},
		EscalationHours: 12,
	},
	models.ImportanceUrgent: {
		Roles:           []string{models.RoleManager, models.RoleDirector},
		EscalationHours: 4,
	},
}

// RouteForImportance returns the route template for an importance level.
func RouteForImportance(importance models.Importance) (RouteRule, error) {
	rule, ok := routeRules[importance]
	if !ok {
		return RouteRule{}, fmt.Errorf("%w: unknown importance %q", ErrValidation, importance)
	}
	out := rule
	out.Roles = append([]string(nil), rule.Roles...)
	return out, nil
}

// BuildChain expands the route template for an importance level into concrete
// chain assignees using a role -> approver id directory. Hosts use this when a
// transaction arrives without an explicit approval chain.
func BuildChain(importance models.Importance, directory map[string]string) ([]models.ChainAssignee, error) {
	rule, err := RouteForImportance(importance)
	if err != nil {
		return nil, err
	}
	chain := make([]models.ChainAssignee, 0, len(rule.Roles))
	for _, role := range rule.Roles {
		approverID, ok := directory[role]
		if !ok || approverID == "" {
			return nil, fmt.Errorf("%w: no approver configured for role %q", ErrValidation, role)
		}
		chain = append(chain, models.ChainAssignee{
			ApproverID:     approverID,
			Role:           role,
			RequiredAction: models.RequireApprove,
		})
	}
	return chain, nil
}
