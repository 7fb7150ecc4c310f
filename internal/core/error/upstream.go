package errx

import (
	"net/http"
)

// WrapUpstream maps external provider failures (model endpoint, image search)
// to the unified Error type. The provider name is kept in the wrapped error
// only; the message stays safe for API consumers.
func WrapUpstream(err error) *Error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, UpstreamErrorMessage)
}
