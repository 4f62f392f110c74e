package intents

import (
	"net/http"

	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/pkg/errors"
)

// stateHTTPError maps lifecycle errors to responses. Errors it does not know
// are returned unchanged and end up as a generic 500.
func stateHTTPError(err error) error {
	var stateErr *intent.StateError
	switch {
	case errors.As(err, &stateErr):
		if stateErr.Unknown() {
			return httperrors.ErrNotFoundIntent.Wrap(err)
		}
		return httperrors.NewHTTPErrorWithDetail(http.StatusConflict, types.PublicHTTPErrorTypeIntentTerminal,
			httperrors.ErrConflictIntentTerminal.Title, "status "+string(stateErr.Status))
	case errors.Is(err, intent.ErrNotFound):
		return httperrors.ErrNotFoundIntent.Wrap(err)
	case errors.Is(err, intent.ErrInvalidIntentRequest):
		return httperrors.NewHTTPErrorWithDetail(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidIntent,
			"Invalid intent request", err.Error())
	}
	return err
}
