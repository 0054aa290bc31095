package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"groupregistration/internal/domain"
)

// ErrNoIdentityClaim is returned for a valid token that names nobody.
var ErrNoIdentityClaim = errors.New("token carries no identity")

type jwtClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// JWTIssuer signs HS256 tokens understood by JWTVerifier.
type JWTIssuer struct {
	secret []byte
}

// NewJWTIssuer returns an issuer that signs JWTs with HS256 using the given secret.
func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret)}
}

// Issue signs a token for subject. username is optional and, when set, takes
// precedence over the subject during verification.
func (i *JWTIssuer) Issue(subject, username string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

type jwtVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier returns an IdentityVerifier for HS256 tokens signed with secret.
func NewJWTVerifier(secret string) domain.IdentityVerifier {
	return &jwtVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Verify validates the token and extracts its identity. The identity claim
// is either a plain username ("sub" or legacy "identity") or an object with a
// "username" member; a top-level "username" claim wins over both.
func (v *jwtVerifier) Verify(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.NoIdentity(), fmt.Errorf("invalid token: %w", err)
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims jwt.MapClaims) (domain.Identity, error) {
	if username, ok := claims["username"].(string); ok && username != "" {
		return domain.ClaimsIdentity(domain.Claims{Username: username, Extra: claims}), nil
	}
	for _, key := range []string{"sub", "identity"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return domain.PlainUsername(v), nil
			}
		case map[string]any:
			username, _ := v["username"].(string)
			return domain.ClaimsIdentity(domain.Claims{Username: username, Extra: v}), nil
		}
	}
	return domain.NoIdentity(), ErrNoIdentityClaim
}
