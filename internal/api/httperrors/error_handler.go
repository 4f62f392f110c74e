package httperrors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HTTPErrorHandler renders every error returned by a handler as the public
// `{ok:false, error}` body. Unknown errors become a generic 500 and their
// detail only reaches the log.
func HTTPErrorHandler(err error, c echo.Context) {
	l := log.Ctx(c.Request().Context())
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}

	var (
		code int
		body interface{}
	)

	switch e := err.(type) {
	case *HTTPError:
		code = e.Code
		body = e.PublicHTTPError
		if e.Internal != nil {
			l.Debug().Err(e.Internal).Int("status", code).Msg("HTTP error with internal cause")
		}
	case *HTTPValidationError:
		code = e.Code
		body = e.PublicHTTPValidationError
	case *echo.HTTPError:
		converted := NewFromEcho(e)
		code = converted.Code
		body = converted.PublicHTTPError
	default:
		l.Error().Err(err).Msg("Unhandled error while processing request")
		code = http.StatusInternalServerError
		body = ErrInternalServer.PublicHTTPError
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		l.Error().Err(err).Msg("Failed to write error response")
	}
}
