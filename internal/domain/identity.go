package domain

import "strings"

// IdentityKind tags the shape of an Identity.
type IdentityKind int

const (
	// IdentityNone means no identity was presented.
	IdentityNone IdentityKind = iota
	// IdentityPlainUsername is an identity that is just a username.
	IdentityPlainUsername
	// IdentityClaims is a structured claim set exposing a username attribute.
	IdentityClaims
)

// Claims is the structured identity form. Username may be empty when the
// issuer did not include one.
type Claims struct {
	Username string
	Extra    map[string]any
}

// Identity is either nothing, a plain username or a claim set.
// The zero value is IdentityNone.
type Identity struct {
	kind     IdentityKind
	username string
	claims   Claims
}

// NoIdentity returns the empty identity.
func NoIdentity() Identity {
	return Identity{}
}

// PlainUsername returns an identity made of a bare username.
func PlainUsername(username string) Identity {
	return Identity{kind: IdentityPlainUsername, username: username}
}

// ClaimsIdentity returns an identity made of a claim set.
func ClaimsIdentity(c Claims) Identity {
	return Identity{kind: IdentityClaims, claims: c}
}

// Kind returns the identity shape.
func (i Identity) Kind() IdentityKind {
	return i.kind
}

// Username extracts the username. ok is false when the identity is absent
// or neither form yields a non-blank username.
func (i Identity) Username() (username string, ok bool) {
	switch i.kind {
	case IdentityPlainUsername:
		username = i.username
	case IdentityClaims:
		username = i.claims.Username
	default:
		return "", false
	}
	if strings.TrimSpace(username) == "" {
		return "", false
	}
	return username, true
}

// IdentityVerifier turns a presented token into an Identity.
type IdentityVerifier interface {
	Verify(token string) (Identity, error)
}
