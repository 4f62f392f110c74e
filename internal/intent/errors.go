package intent

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidIntentRequest    = errors.New("invalid intent request")
	ErrUnknownOrTerminalIntent = errors.New("unknown or terminal intent")
	ErrNotFound                = errors.New("intent not found")
	ErrAlreadyExists           = errors.New("intent already exists")
)

// StateError tells unknown intents apart from intents that are terminal.
// It matches ErrUnknownOrTerminalIntent.
type StateError struct {
	IntentID string
	Status   Status
}

func (e *StateError) Error() string {
	if e.Unknown() {
		return fmt.Sprintf("intent %s: %s: not found", e.IntentID, ErrUnknownOrTerminalIntent)
	}
	return fmt.Sprintf("intent %s: %s: status %s", e.IntentID, ErrUnknownOrTerminalIntent, e.Status)
}

func (e *StateError) Is(target error) bool {
	return target == ErrUnknownOrTerminalIntent
}

func (e *StateError) Unknown() bool {
	return e.Status == ""
}
