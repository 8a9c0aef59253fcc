package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Storage errors. Both are surfaced to the caller as 500s with the cause attached.
var (
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
)

func NewStorageReadError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageRead,
		Details:    fmt.Sprintf("Failed to %s", operation),
		Cause:      cause,
	}
}

func NewStorageWriteError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageWrite,
		Details:    fmt.Sprintf("Failed to %s", operation),
		Cause:      cause,
	}
}

func IsStorageRead(err error) bool {
	return errors.Is(err, ErrStorageRead)
}

func IsStorageWrite(err error) bool {
	return errors.Is(err, ErrStorageWrite)
}
