package transport

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrSessionInvalidated is returned for a request whose credential the backend
// rejected.
var ErrSessionInvalidated = errors.New("session invalidated by backend")

// DefaultRejectStatuses is the set of statuses treated as session rejection.
var DefaultRejectStatuses = []int{http.StatusUnauthorized}

// CredentialSource yields the credential to attach. An empty string with a nil
// error means there is no session.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func(ctx context.Context) (string, error)

func (f CredentialFunc) Credential(ctx context.Context) (string, error) {
	return f(ctx)
}

type anonymousKey struct{}

// Anonymous marks ctx so requests made with it never carry the credential. Sign-in
// uses it so a stale session cannot turn a plain 401 into a teardown.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// Rejection describes one backend rejection.
type Rejection struct {
	Method string
	Path   string
	Status int
	// digest identifies the credential the rejected request carried.
	digest [sha256.Size]byte
}

// Carried reports whether credential is the one the rejected request carried. A
// late rejection of an earlier credential must not end a newer session.
func (r Rejection) Carried(credential string) bool {
	d := sha256.Sum256([]byte(credential))
	return subtle.ConstantTimeCompare(d[:], r.digest[:]) == 1
}

// BearerTransport is an http.RoundTripper. The zero value forwards requests over
// http.DefaultTransport without attaching anything.
type BearerTransport struct {
	// Base performs the request. Defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Source supplies the credential. Requests go out bare when it is nil or
	// reports no session.
	Source CredentialSource
	// RejectStatuses defaults to DefaultRejectStatuses when empty.
	RejectStatuses []int
	// Hosts limits credential attachment to these hosts (with port when present).
	// Empty attaches to every host.
	Hosts []string
	// OnReject runs synchronously before RoundTrip returns.
	OnReject func(ctx context.Context, rej Rejection)
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var token string
	if t.Source != nil && req.Header.Get("Authorization") == "" && !isAnonymous(req.Context()) && t.attaches(req) {
		cred, err := t.Source.Credential(req.Context())
		if err == nil && cred != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+cred)
			token = cred
		}
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil || token == "" || !t.rejects(resp.StatusCode) {
		return resp, err
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()

	rej := Rejection{
		Method: req.Method,
		Path:   req.URL.Path,
		Status: resp.StatusCode,
		digest: sha256.Sum256([]byte(token)),
	}
	if t.OnReject != nil {
		t.OnReject(req.Context(), rej)
	}
	return nil, fmt.Errorf("%w: %s %s answered %d", ErrSessionInvalidated, rej.Method, rej.Path, rej.Status)
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *BearerTransport) rejects(status int) bool {
	statuses := t.RejectStatuses
	if len(statuses) == 0 {
		statuses = DefaultRejectStatuses
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (t *BearerTransport) attaches(req *http.Request) bool {
	if len(t.Hosts) == 0 {
		return true
	}
	for _, h := range t.Hosts {
		if strings.EqualFold(h, req.URL.Host) {
			return true
		}
	}
	return false
}
