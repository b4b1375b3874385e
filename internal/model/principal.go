package model

import "time"

// PrincipalKind distinguishes the two account tables a token can refer to.
type PrincipalKind string

const (
	PrincipalAdmin PrincipalKind = "admin"
	PrincipalUser  PrincipalKind = "user"
)

// Valid reports whether k names a known principal kind.
func (k PrincipalKind) Valid() bool {
	return k == PrincipalAdmin || k == PrincipalUser
}

// Principal is the authenticated caller bound to a request by the auth gate.
type Principal struct {
	ID        int
	Kind      PrincipalKind
	TokenID   string
	ExpiresAt *time.Time
}
