package util

import (
	"net/http"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/kashguard/go-payment-intents/internal/api/httperrors"
	"github.com/kashguard/go-payment-intents/internal/types"
	"github.com/labstack/echo/v4"
)

// BindAndValidateBody binds the request body into v and runs its swagger
// style validation.
func BindAndValidateBody(c echo.Context, v runtime.Validatable) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindBody(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind request body")
		return httperrors.ErrBadRequestMalformedBody
	}

	return validatePayload(c, v)
}

func BindAndValidatePathParams(c echo.Context, v runtime.Validatable) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindPathParams(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind path params")
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidParams, "Invalid path parameters")
	}

	return validatePayload(c, v)
}

func BindAndValidateQueryParams(c echo.Context, v runtime.Validatable) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindQueryParams(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind query params")
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidParams, "Invalid query parameters")
	}

	return validatePayload(c, v)
}

// ValidateAndReturn validates the response before writing it so that the
// service never emits a payload that breaks its own contract.
func ValidateAndReturn(c echo.Context, code int, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		LogFromEchoContext(c).Error().Err(err).Msg("Response validation failed")
		return httperrors.ErrInternalServer
	}

	return c.JSON(code, v)
}

func validatePayload(c echo.Context, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Payload validation failed")
		return httperrors.NewFromValidation(err)
	}
	return nil
}
