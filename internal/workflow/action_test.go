package workflow_test

import (
	"errors"
	"testing"

	"github.com/BaraaHazzaa/DocuMint/internal/workflow"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		token string
		want  workflow.Action
	}{
		{"approve", workflow.ActionApprove},
		{"reject", workflow.ActionReject},
		{"escalate", workflow.ActionEscalate},
	}
	for _, tc := range cases {
		got, err := workflow.ParseAction(tc.token)
		if err != nil {
			t.Fatalf("ParseAction(%q) returned error: %v", tc.token, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAction(%q) = %v, want %v", tc.token, got, tc.want)
		}
		if got.String() != tc.token {
			t.Fatalf("Action.String() = %q, want %q", got.String(), tc.token)
		}
	}
}

func TestParseActionUnknownToken(t *testing.T) {
	for _, token := range []string{"", "comment", "APPROVE", "delete"} {
		if _, err := workflow.ParseAction(token); !errors.Is(err, workflow.ErrInvalidAction) {
			t.Fatalf("ParseAction(%q) error = %v, want ErrInvalidAction", token, err)
		}
	}
}
