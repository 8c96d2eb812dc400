package httperrors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-signer/internal/types"
)

// HTTPError is the JSON error body of every failed request
type HTTPError struct {
	types.PublicHTTPError
	Internal error `json:"-"`
}

// HTTPValidationError additionally lists the fields that failed validation
type HTTPValidationError struct {
	types.PublicHTTPValidationError
	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType types.PublicHTTPErrorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  swag.Int64(int64(code)),
			Type:  &errorType,
			Title: &title,
		},
	}
}

func NewHTTPErrorWithDetail(code int, errorType types.PublicHTTPErrorType, title string, detail string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:   swag.Int64(int64(code)),
			Type:   &errorType,
			Title:  &title,
			Detail: detail,
		},
	}
}

func (e *HTTPError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTPError %d (%s): %s", swag.Int64Value(e.Code), *e.Type, swag.StringValue(e.Title))

	if len(e.Detail) > 0 {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}

	return b.String()
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

func NewHTTPValidationError(code int, errorType types.PublicHTTPErrorType, title string, validationErrors []*types.HTTPValidationErrorDetail) *HTTPValidationError {
	return &HTTPValidationError{
		PublicHTTPValidationError: types.PublicHTTPValidationError{
			PublicHTTPError: types.PublicHTTPError{
				Code:  swag.Int64(int64(code)),
				Type:  &errorType,
				Title: &title,
			},
			ValidationErrors: validationErrors,
		},
	}
}

func (e *HTTPValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTPValidationError %d (%s): %s", swag.Int64Value(e.Code), *e.Type, swag.StringValue(e.Title))

	for _, v := range e.ValidationErrors {
		fmt.Fprintf(&b, " - %s (%s): %s", swag.StringValue(v.Key), swag.StringValue(v.In), swag.StringValue(v.Error))
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ", %v", e.Internal)
	}

	return b.String()
}

func (e *HTTPValidationError) Unwrap() error {
	return e.Internal
}

var (
	ErrBadRequestInvalidBody = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeINVALIDBODY, "Request body could not be parsed.")
	ErrNotFoundSignRequest   = NewHTTPError(http.StatusNotFound, types.PublicHTTPErrorTypeNOTFOUND, "Sign request not found.")
	ErrConflictNotPending    = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeNOTPENDING, "Sign request is not awaiting a response.")
)

// HTTPErrorHandler renders HTTPError, HTTPValidationError and echo.HTTPError
// values as JSON bodies
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var body interface{}

	var validationErr *HTTPValidationError
	var httpErr *HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &validationErr):
		code, body = int(swag.Int64Value(validationErr.Code)), validationErr
	case errors.As(err, &httpErr):
		code, body = int(swag.Int64Value(httpErr.Code)), httpErr
	case errors.As(err, &echoErr):
		title := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok {
			title = msg
		}
		code, body = echoErr.Code, NewHTTPError(echoErr.Code, types.PublicHTTPErrorTypeGeneric, title)
	default:
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("Unhandled error in request")
		code = http.StatusInternalServerError
		body = NewHTTPError(code, types.PublicHTTPErrorTypeGeneric, http.StatusText(code))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, body)
	}
	if writeErr != nil {
		log.Ctx(c.Request().Context()).Error().Err(writeErr).Msg("Failed to write error response")
	}
}
