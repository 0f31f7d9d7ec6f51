package pipeline

import (
	"errors"
	"net/http"

	"github.com/yourorg/image-variants/internal/variant"
)

// Response is the protocol-level envelope handed back to the caller.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Redirect points the caller at the public URL of a derived object.
func Redirect(baseURL, derivedKey string) *Response {
	return &Response{
		StatusCode: http.StatusMovedPermanently,
		Headers:    map[string]string{"location": baseURL + "/" + derivedKey},
		Body:       derivedKey,
	}
}

// Reject is a client error carrying the reason.
func Reject(reason error) *Response {
	if reason == nil {
		reason = variant.ErrCannotExtract
	}
	return &Response{
		StatusCode: http.StatusForbidden,
		Headers:    map[string]string{},
		Body:       reason.Error(),
	}
}

// IsRejection reports whether err is a client-side rejection rather than an
// invocation failure.
func IsRejection(err error) bool {
	return errors.Is(err, variant.ErrMalformed) ||
		errors.Is(err, variant.ErrCannotExtract) ||
		errors.Is(err, variant.ErrDisallowedResolution)
}
