package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/identity"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
)

const secret = "test-secret"

func newVerifier(t *testing.T, opts ...identity.VerifierOption) *identity.Verifier {
	t.Helper()
	v, err := identity.NewVerifier(secret, opts...)
	require.NoError(t, err)
	return v
}

func TestVerifier(t *testing.T) {
	t.Parallel()

	customer := identity.Identity{Subject: uuid.New(), Role: rbac.RoleCustomer}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		v := newVerifier(t, identity.WithIssuer("sea-auth"), identity.WithAudience("catering"))

		token, err := v.Issue(customer, time.Hour)
		require.NoError(t, err)

		got, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, customer, got)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		past := time.Now().Add(-2 * time.Hour)
		issuer := newVerifier(t, identity.WithClock(func() time.Time { return past }))
		token, err := issuer.Issue(customer, time.Hour)
		require.NoError(t, err)

		_, err = newVerifier(t).Verify(token)
		assert.ErrorIs(t, err, identity.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		other, err := identity.NewVerifier("another-secret")
		require.NoError(t, err)
		token, err := other.Issue(customer, time.Hour)
		require.NoError(t, err)

		_, err = newVerifier(t).Verify(token)
		assert.ErrorIs(t, err, identity.ErrInvalidToken)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		t.Parallel()
		token, err := newVerifier(t, identity.WithIssuer("someone-else")).Issue(customer, time.Hour)
		require.NoError(t, err)

		_, err = newVerifier(t, identity.WithIssuer("sea-auth")).Verify(token)
		assert.ErrorIs(t, err, identity.ErrInvalidToken)
	})

	t.Run("nil subject rejected", func(t *testing.T) {
		t.Parallel()
		v := newVerifier(t)
		token, err := v.Issue(identity.Identity{Role: rbac.RoleCustomer}, time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, identity.ErrInvalidSubjectClaim)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()
		_, err := identity.NewVerifier("")
		assert.ErrorIs(t, err, identity.ErrMissingSigningKey)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	v := newVerifier(t)
	admin := identity.Identity{Subject: uuid.New(), Role: rbac.RoleAdmin}
	token, err := v.Issue(admin, time.Hour)
	require.NoError(t, err)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		role, _ := rbac.RoleFromContext(r.Context())
		_, _ = w.Write([]byte(id.Subject.String() + ":" + role))
	})

	t.Run("anonymous passes through", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		identity.Middleware(v)(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("valid token sets identity and role", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		identity.Middleware(v)(echo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, admin.Subject.String()+":admin", rec.Body.String())
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		identity.Middleware(v)(echo).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		identity.Middleware(v)(echo).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	guard := identity.RequireRole([]string{rbac.RoleAdmin})(ok)

	tests := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"anonymous", context.Background(), http.StatusUnauthorized},
		{"customer", identity.WithIdentity(context.Background(), identity.Identity{Subject: uuid.New(), Role: rbac.RoleCustomer}), http.StatusForbidden},
		{"admin", identity.WithIdentity(context.Background(), identity.Identity{Subject: uuid.New(), Role: rbac.RoleAdmin}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tt.ctx)
			guard.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	_, err := identity.Require(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnauthorized)

	id := identity.Identity{Subject: uuid.New(), Role: rbac.RoleCustomer}
	got, err := identity.Require(identity.WithIdentity(context.Background(), id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	attr, ok := identity.LogAttr(identity.WithIdentity(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, "caller", attr.Key)
}
