package token

import (
	"errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/skybi/tenote/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unrelated-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	raw := sign(t, jwt.MapClaims{
		"sub":                "user-1",
		"tenantSlug":         "acme",
		"tenantSubscription": "pro",
		"role":               "admin",
		"email":              "a@b.com",
	})

	claims, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.TenantSlug)
	assert.Equal(t, tenant.SubscriptionPro, claims.TenantSubscription)
	assert.Equal(t, tenant.RoleAdmin, claims.Role)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.HasTenant())
}

func TestDecodeIgnoresSignatureAndExpiry(t *testing.T) {
	raw := sign(t, jwt.MapClaims{
		"tenantSlug": "acme",
		"exp":        1,
	})

	claims, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.TenantSlug)
}

func TestDecodeWithoutTenant(t *testing.T) {
	claims, err := Decode(sign(t, jwt.MapClaims{"sub": "user-1"}))
	require.NoError(t, err)
	assert.False(t, claims.HasTenant())
	assert.Empty(t, claims.TenantSubscription)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "opaque", raw: "t1"},
		{name: "two segments", raw: "abc.def"},
		{name: "bad base64 payload", raw: "eyJhbGciOiJIUzI1NiJ9.%%%.sig"},
		{name: "payload not json", raw: "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"},
		{name: "wrong claim type", raw: "eyJhbGciOiJIUzI1NiJ9.eyJ0ZW5hbnRTbHVnIjo0Mn0.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Decode(tt.raw)
			require.Error(t, err)
			assert.Nil(t, claims)

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
		})
	}
}
