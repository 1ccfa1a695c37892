package plan

import "fmt"

// ValidateEntryTransition validates an entry status change. Entries only
// leave PENDING; there is no path back once an outcome is recorded.
func ValidateEntryTransition(from, to EntryStatus) error {
	if from == EntryPending && (to == EntryCompleted || to == EntryMissed) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
