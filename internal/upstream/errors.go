package upstream

import (
	"errors"
	"fmt"
)

// TransportError covers network failures and timeouts. Transient; the catalog
// cache treats it as eligible for stale/fallback serving.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("upstream transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// AuthError is a 401/403 from the upstream: our token or credential was
// rejected. Kept distinct from RejectedError so operators can tell credential
// rot from request-shape problems.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream authentication failed (%d): %s", e.Status, e.Detail)
}

// RejectedError is any other non-2xx response; Detail carries whatever the
// upstream said so quote/session callers can surface it.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("upstream rejected request (%d): %s", e.Status, e.Detail)
}

// ProtocolError is a 2xx whose body could not be parsed. Treated as a
// failure, not a success: an unreadable catalog is no catalog.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("upstream protocol: %v", e.Err) }
func (e *ProtocolError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an upstream 401/403.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
