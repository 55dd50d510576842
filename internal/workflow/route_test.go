package workflow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
	"github.com/BaraaHazzaa/DocuMint/internal/workflow"
)

func TestRouteForImportance(t *testing.T) {
	cases := []struct {
		importance models.Importance
		roles      []string
		escalation int
	}{
		{models.ImportanceLow, []string{models.RoleManager}, 48},
		{models.ImportanceMedium, []string{models.RoleManager, models.RoleViceManager}, 24},
		{models.ImportanceHigh, []string{models.RoleManager, models.RoleViceManager, models.RoleDirector}, 12},
		{models.ImportanceUrgent, []string{models.RoleManager, models.RoleDirector}, 4},
	}
	for _, tc := range cases {
		rule, err := workflow.RouteForImportance(tc.importance)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.importance, err)
		}
		assert.Equal(t, tc.roles, rule.Roles)
		assert.Equal(t, tc.escalation, rule.EscalationHours)
	}

	if _, err := workflow.RouteForImportance("critical"); !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("unknown importance error = %v, want ErrValidation", err)
	}
}

func TestBuildChain(t *testing.T) {
	directory := map[string]string{
		models.RoleManager:     "user-mgr",
		models.RoleViceManager: "user-vm",
		models.RoleDirector:    "user-dir",
	}

	chain, err := workflow.BuildChain(models.ImportanceUrgent, directory)
	if err != nil {
		t.Fatalf("BuildChain returned error: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 entries for urgent route, got %d", len(chain))
	}
	assert.Equal(t, "user-mgr", chain[0].ApproverID)
	assert.Equal(t, models.RoleManager, chain[0].Role)
	assert.Equal(t, "user-dir", chain[1].ApproverID)
	assert.Equal(t, models.RoleDirector, chain[1].Role)
}

func TestBuildChainMissingRole(t *testing.T) {
	directory := map[string]string{models.RoleManager: "user-mgr"}
	if _, err := workflow.BuildChain(models.ImportanceHigh, directory); !errors.Is(err, workflow.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation for missing role", err)
	}
}
