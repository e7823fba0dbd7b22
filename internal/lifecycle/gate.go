package lifecycle

import (
	"fmt"
	"time"

	"frontdesk/internal/repair"
)

// MutationNotice is how far before the booking start a repair can still be
// canceled or rescheduled.
const MutationNotice = 2 * time.Hour

// CanMutate reports whether a repair may still be canceled or rescheduled:
// now plus the notice period must fall strictly before the booking start.
// The predicate is monotonic in now: once it turns false it stays false.
func CanMutate(r repair.Record, now time.Time) bool {
	return now.Add(MutationNotice).Before(r.Booking.Start())
}

// OutcomeStatus tags the result of a mutation attempt.
type OutcomeStatus string

const (
	OutcomeOK                  OutcomeStatus = "ok"
	OutcomeNoSelection         OutcomeStatus = "no_selection"
	OutcomeTooLate             OutcomeStatus = "too_late"
	OutcomeIncompleteSelection OutcomeStatus = "incomplete_selection"
	OutcomeFailed              OutcomeStatus = "failed"
)

// Outcome is the tagged result of cancel/reschedule. The core never raises
// past its public operations; callers inspect the status.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message"`
}

func okOutcome(message string) Outcome {
	return Outcome{Status: OutcomeOK, Message: message}
}

func noSelectionOutcome() Outcome {
	return Outcome{Status: OutcomeNoSelection, Message: "Select an upcoming service first."}
}

func tooLateOutcome(action string, g repair.Garage) Outcome {
	return Outcome{
		Status: OutcomeTooLate,
		Message: fmt.Sprintf(
			"It is too late to %s, only possible 2 hours before start time. Please contact directly with %s.",
			action, g.Name,
		),
	}
}

func incompleteOutcome() Outcome {
	return Outcome{
		Status:  OutcomeIncompleteSelection,
		Message: "You must select start time in order to edit service date.",
	}
}

func failedOutcome(action string) Outcome {
	return Outcome{Status: OutcomeFailed, Message: fmt.Sprintf("Could not %s, please try again later.", action)}
}
