// Package auth applies credentials to outgoing registry and GitHub requests.
package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/glorpus-work/hbpm/pkg/errors"
)

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// BasicAuth represents HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// HeaderAuth represents authentication via custom HTTP headers.
type HeaderAuth struct {
	Headers map[string]string
}

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// BasicAuthType represents HTTP Basic Authentication.
	BasicAuthType Type = "basic"
	// HeaderAuthType represents custom header-based authentication.
	HeaderAuthType Type = "header"
	// BearerAuthType represents Bearer token authentication.
	BearerAuthType Type = "bearer"
	// HostsType selects credentials by request host.
	HostsType Type = "hosts"
)

// Apply adds Basic Authentication headers to the HTTP request.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns the authentication type (BasicAuthType).
func (b BasicAuth) Type() Type { return BasicAuthType }

// Apply adds custom headers to the HTTP request.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Type returns the authentication type (HeaderAuthType).
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// FromToken builds an authenticator from a configured token: "user:password" yields
// Basic credentials, anything else a Bearer token. An empty token yields nil.
func FromToken(token string) Authenticator {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if user, pass, ok := strings.Cut(token, ":"); ok && user != "" {
		return BasicAuth{Username: user, Password: pass}
	}
	return BearerAuth{Token: token}
}

// Hosts applies the authenticator registered for the request host, if any.
// Credentials never leave the host they were configured for.
type Hosts struct {
	byHost map[string]Authenticator
}

// NewHosts creates an empty host table.
func NewHosts() *Hosts {
	return &Hosts{byHost: make(map[string]Authenticator)}
}

// Add registers a for the host of rawURL. A nil authenticator is ignored.
func (h *Hosts) Add(rawURL string, a Authenticator) error {
	if a == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: cannot derive a host from %q", errors.ErrInvalidInput, rawURL)
	}
	h.byHost[strings.ToLower(u.Host)] = a
	return nil
}

// Len returns the number of hosts with credentials.
func (h *Hosts) Len() int { return len(h.byHost) }

// Apply applies the credentials of req's host.
func (h *Hosts) Apply(req *http.Request) error {
	if a, ok := h.byHost[strings.ToLower(req.URL.Host)]; ok {
		return a.Apply(req)
	}
	return nil
}

// Type returns HostsType.
func (h *Hosts) Type() Type { return HostsType }
