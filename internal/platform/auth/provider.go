// Package auth supplies the verified owner identity for each request.
// Identity is established upstream; this package only reads it.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrMissingOwner is returned when a request carries no owner identity
var ErrMissingOwner = errors.New("owner identity missing")

// MaxOwnerIDLength bounds the accepted owner id
const MaxOwnerIDLength = 128

// Provider resolves the owner of an incoming request
type Provider interface {
	OwnerID(r *http.Request) (string, error)
}

// HeaderProvider trusts an owner id set by an authenticating proxy in front of the service
type HeaderProvider struct {
	header string
}

var _ Provider = (*HeaderProvider)(nil)

func NewHeaderProvider(header string) *HeaderProvider {
	return &HeaderProvider{header: http.CanonicalHeaderKey(header)}
}

// OwnerID returns the trimmed header value, or ErrMissingOwner when it is empty or oversized
func (p *HeaderProvider) OwnerID(r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.Header.Get(p.header))
	if owner == "" || len(owner) > MaxOwnerIDLength {
		return "", ErrMissingOwner
	}
	return owner, nil
}

// Header returns the header the provider reads
func (p *HeaderProvider) Header() string {
	return p.header
}
