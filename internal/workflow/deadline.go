package workflow

import (
	"time"

	"github.com/BaraaHazzaa/DocuMint/internal/models"
)

// Base deadline offsets per importance level.
const (
	deadlineLowHours    = 72
	deadlineMediumHours = 48
	deadlineHighHours   = 24
	deadlineUrgentHours = 12
)

// CalculateDeadline returns the absolute deadline for the approver at
// approverIndex on a chain of the given importance, measured from now.
//
// The approver index is accepted but does not change the offset: every
// position in a chain gets the same horizon. Known product gap, kept as-is
// until the cascading-deadline question is settled.
func CalculateDeadline(now time.Time, importance models.Importance, approverIndex int) time.Time {
	_ = approverIndex
	return now.Add(time.Duration(deadlineBaseHours(importance)) * time.Hour)
}

func deadlineBaseHours(importance models.Importance) int {
	switch importance {
	case models.ImportanceLow:
		return deadlineLowHours
	case models.ImportanceMedium:
		return deadlineMediumHours
	case models.ImportanceHigh:
		return deadlineHighHours
	case models.ImportanceUrgent:
		return deadlineUrgentHours
	}
	return deadlineLowHours
}
