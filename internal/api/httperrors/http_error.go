package httperrors

import (
	"fmt"
	"net/http"
	"strings"

	oerrors "github.com/go-openapi/errors"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/labstack/echo/v4"
)

type HTTPError struct {
	types.PublicHTTPError
	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType types.PublicHTTPErrorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			OK:      false,
			Message: title,
			Code:    code,
			Type:    errorType,
			Title:   title,
		},
	}
}

func NewHTTPErrorWithDetail(code int, errorType types.PublicHTTPErrorType, title string, detail string) *HTTPError {
	e := NewHTTPError(code, errorType, title)
	e.Detail = detail
	e.Message = title + ": " + detail
	return e
}

// NewFromEcho converts echo's own errors (404 route, 405, bind errors) into
// the public error shape.
func NewFromEcho(e *echo.HTTPError) *HTTPError {
	title := http.StatusText(e.Code)
	if msg, ok := e.Message.(string); ok && msg != "" {
		title = msg
	}

	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			OK:      false,
			Message: title,
			Code:    e.Code,
			Type:    types.PublicHTTPErrorTypeGeneric,
			Title:   title,
		},
		Internal: e.Internal,
	}
}

func (e *HTTPError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTPError %d (%s): %s", e.Code, e.Type, e.Title)

	if len(e.Detail) > 0 {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}

	return b.String()
}

// Wrap returns a copy of e that keeps err for logging only.
func (e *HTTPError) Wrap(err error) *HTTPError {
	c := *e
	c.Internal = err
	return &c
}

type HTTPValidationError struct {
	types.PublicHTTPValidationError
	Internal error `json:"-"`
}

// NewFromValidation flattens go-openapi validation errors into a 400.
func NewFromValidation(err error) *HTTPValidationError {
	details := make([]*HTTPValidationErrorDetail, 0)
	collectValidationDetails(err, &details)

	msgs := make([]string, 0, len(details))
	for _, d := range details {
		msgs = append(msgs, d.Error)
	}

	title := "Bad Request"
	message := title
	if len(msgs) > 0 {
		message = strings.Join(msgs, "; ")
	}

	return &HTTPValidationError{
		PublicHTTPValidationError: types.PublicHTTPValidationError{
			PublicHTTPError: types.PublicHTTPError{
				OK:      false,
				Message: message,
				Code:    http.StatusBadRequest,
				Type:    types.PublicHTTPErrorTypeValidation,
				Title:   title,
			},
			ValidationErrors: details,
		},
		Internal: err,
	}
}

type HTTPValidationErrorDetail = types.HTTPValidationErrorDetail

func collectValidationDetails(err error, details *[]*HTTPValidationErrorDetail) {
	switch e := err.(type) {
	case *oerrors.CompositeError:
		for _, inner := range e.Errors {
			collectValidationDetails(inner, details)
		}
	case *oerrors.Validation:
		*details = append(*details, &HTTPValidationErrorDetail{
			Key:   e.Name,
			In:    e.In,
			Error: e.Error(),
		})
	default:
		*details = append(*details, &HTTPValidationErrorDetail{
			Key:   "",
			In:    "body",
			Error: err.Error(),
		})
	}
}

func (e *HTTPValidationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "HTTPValidationError %d (%s): %s", e.Code, e.Type, e.Message)
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}

	return b.String()
}
