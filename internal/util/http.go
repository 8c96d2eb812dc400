package util

import (
	"context"
	"fmt"
	"net/http"

	oerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/api/httperrors"
	"github/chapool/go-signer/internal/types"
)

// BindAndValidateBody binds the request body of c into v and validates it
// against its schema
func BindAndValidateBody(c echo.Context, v runtime.Validatable) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind request body")
		return httperrors.ErrBadRequestInvalidBody
	}

	return validatePayload(c, v)
}

// ValidateAndReturn validates v against its schema and writes it as JSON
func ValidateAndReturn(c echo.Context, code int, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		var compositeError *oerrors.CompositeError
		if errors.As(err, &compositeError) {
			LogFromEchoContext(c).Error().Errs("validation_errors", compositeError.Errors).Msg("Response did not match schema")
		} else {
			LogFromEchoContext(c).Error().Err(err).Msg("Response did not match schema")
		}

		return errors.Wrap(err, "invalid response payload")
	}

	return c.JSON(code, v)
}

func validatePayload(c echo.Context, v runtime.Validatable) error {
	err := v.Validate(strfmt.Default)
	if err == nil {
		return nil
	}

	var compositeError *oerrors.CompositeError
	if errors.As(err, &compositeError) {
		LogFromEchoContext(c).Debug().Errs("validation_errors", compositeError.Errors).Msg("Payload did not match schema, returning HTTP validation error")

		valErrs := formatValidationErrors(c.Request().Context(), compositeError)
		return httperrors.NewHTTPValidationError(http.StatusBadRequest, types.PublicHTTPErrorTypeINVALIDBODY, http.StatusText(http.StatusBadRequest), valErrs)
	}

	var validationError *oerrors.Validation
	if errors.As(err, &validationError) {
		LogFromEchoContext(c).Debug().Err(validationError).Msg("Payload did not match schema, returning HTTP validation error")

		valErrs := []*types.HTTPValidationErrorDetail{
			{
				Key:   swag.String(validationError.Name),
				In:    swag.String(validationError.In),
				Error: swag.String(validationError.Error()),
			},
		}
		return httperrors.NewHTTPValidationError(http.StatusBadRequest, types.PublicHTTPErrorTypeINVALIDBODY, http.StatusText(http.StatusBadRequest), valErrs)
	}

	LogFromEchoContext(c).Error().Err(err).Msg("Failed to validate payload, returning generic HTTP error")
	return err
}

func formatValidationErrors(ctx context.Context, err *oerrors.CompositeError) []*types.HTTPValidationErrorDetail {
	valErrs := make([]*types.HTTPValidationErrorDetail, 0, len(err.Errors))

	for _, e := range err.Errors {
		var validationError *oerrors.Validation
		if errors.As(e, &validationError) {
			valErrs = append(valErrs, &types.HTTPValidationErrorDetail{
				Key:   swag.String(validationError.Name),
				In:    swag.String(validationError.In),
				Error: swag.String(validationError.Error()),
			})
			continue
		}

		var compositeError *oerrors.CompositeError
		if errors.As(e, &compositeError) {
			valErrs = append(valErrs, formatValidationErrors(ctx, compositeError)...)
			continue
		}

		LogFromContext(ctx).Warn().Err(e).Str("err_type", fmt.Sprintf("%T", e)).Msg("Received unknown error type while validating payload, skipping")
	}

	return valErrs
}
