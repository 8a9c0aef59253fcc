package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation is the parent of every input-validation error; the more specific
// sentinels below are wrapped around it so errors.Is matches either.
var ErrValidation = errors.New("validation failed")

// Request & Input-Validation Errors
var (
	ErrMalformedPayload     = fmt.Errorf("malformed payload: %w", ErrValidation)
	ErrMissingRequiredField = fmt.Errorf("missing required field: %w", ErrValidation)
	ErrInvalidField         = fmt.Errorf("invalid field: %w", ErrValidation)
	ErrUnknownField         = fmt.Errorf("unknown field: %w", ErrValidation)
	ErrImmutableField       = fmt.Errorf("immutable field: %w", ErrValidation)
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type: %w", ErrValidation)
	ErrFileTooLarge         = fmt.Errorf("file too large: %w", ErrValidation)
	ErrMissingFile          = fmt.Errorf("missing file: %w", ErrValidation)
	ErrInvalidFilename      = fmt.Errorf("invalid filename: %w", ErrValidation)
)

func NewValidationError(message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    message,
	}
}

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    fmt.Sprintf("Missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("Invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}

func NewUnknownFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnknownField,
		Details:    fmt.Sprintf("Unknown field: %s", fieldName),
		Field:      fieldName,
	}
}

func NewImmutableFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrImmutableField,
		Details:    fmt.Sprintf("Field %s cannot be modified", fieldName),
		Field:      fieldName,
	}
}

func NewUnsupportedMediaTypeError(contentType string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnsupportedMediaType,
		Details:    fmt.Sprintf("Only video files are allowed, got %q", contentType),
		Field:      "video",
	}
}

func NewFileTooLargeError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrFileTooLarge,
		Details:    fmt.Sprintf("File too large. Maximum size is %s.", formatSize(maxSize)),
		Field:      "video",
	}
}

// formatSize renders whole mebibytes as "50MB", other sizes of at least 1MiB with
// one decimal rounded up, and anything smaller in bytes.
func formatSize(n int64) string {
	const mib = 1024 * 1024
	switch {
	case n >= mib && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n >= mib:
		tenths := (n*10 + mib - 1) / mib
		return fmt.Sprintf("%d.%dMB", tenths/10, tenths%10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func NewMissingFileError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingFile,
		Details:    "No video file uploaded",
		Field:      fieldName,
	}
}

func NewInvalidFilenameError(filename string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidFilename,
		Details:    fmt.Sprintf("Invalid filename %q", filename),
		Field:      "filename",
	}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUnsupportedMediaType(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType)
}

func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

func IsImmutableField(err error) bool {
	return errors.Is(err, ErrImmutableField)
}
