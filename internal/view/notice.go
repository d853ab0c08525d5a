// Package view renders the storefront's screens as text. Every screen is
// wrapped in an error boundary that turns API failures into the notices the
// customer sees instead of a crash.
package view

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/fastorder/storefront/internal/api"
)

// Describe maps a failed call onto the notice shown to the user. Validation
// failures surface the server's message verbatim.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrAuthExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, api.ErrForbidden):
		return "You do not have access to this page."
	case errors.Is(err, api.ErrNotFound):
		return "The requested resource is unavailable."
	case errors.Is(err, api.ErrRateLimited):
		return "The server is busy. Please try again in a moment."
	case errors.Is(err, api.ErrValidation):
		if msg := api.Message(err); msg != "" {
			return msg
		}
		return "The request was rejected. Please check your input."
	default:
		return "Something went wrong. Please try again."
	}
}

func isAPIError(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr)
}

// Show runs one screen render and absorbs its failure into a notice, so a
// broken screen never takes the app down.
func Show(w io.Writer, name string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("ERROR: render %s: %v", name, err)
		fmt.Fprintf(w, "\n%s\n", Describe(err))
	}
}
