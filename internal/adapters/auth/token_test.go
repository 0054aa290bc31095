package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupregistration/internal/domain"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestJWTIssuer_Issue(t *testing.T) {
	issuer := NewJWTIssuer(testSecret)

	token, err := issuer.Issue("42", "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestJWTVerifier_Verify(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name     string
		token    func(t *testing.T) string
		wantKind domain.IdentityKind
		wantUser string
		wantErr  bool
	}{
		{
			name: "issued token prefers username claim",
			token: func(t *testing.T) string {
				tok, err := NewJWTIssuer(testSecret).Issue("42", "alice", time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantKind: domain.IdentityClaims,
			wantUser: "alice",
		},
		{
			name:     "plain string subject",
			token:    func(t *testing.T) string { return sign(t, jwt.MapClaims{"sub": "bob", "exp": exp}) },
			wantKind: domain.IdentityPlainUsername,
			wantUser: "bob",
		},
		{
			name: "structured subject",
			token: func(t *testing.T) string {
				return sign(t, jwt.MapClaims{"sub": map[string]any{"username": "carol", "group": "staff"}, "exp": exp})
			},
			wantKind: domain.IdentityClaims,
			wantUser: "carol",
		},
		{
			name:     "legacy identity claim",
			token:    func(t *testing.T) string { return sign(t, jwt.MapClaims{"identity": "dave", "exp": exp}) },
			wantKind: domain.IdentityPlainUsername,
			wantUser: "dave",
		},
		{
			name:    "no identity claim",
			token:   func(t *testing.T) string { return sign(t, jwt.MapClaims{"exp": exp}) },
			wantErr: true,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.MapClaims{"sub": "bob", "exp": time.Now().Add(-time.Hour).Unix()})
			},
			wantErr: true,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, err := NewJWTIssuer("other").Issue("42", "alice", time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
		{
			name: "unexpected algorithm",
			token: func(t *testing.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "bob"}).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func(*testing.T) string { return "not-a-jwt" },
			wantErr: true,
		},
	}

	v := NewJWTVerifier(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(tt.token(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.IdentityNone, id.Kind())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, id.Kind())
			username, ok := id.Username()
			require.True(t, ok)
			assert.Equal(t, tt.wantUser, username)
		})
	}
}
