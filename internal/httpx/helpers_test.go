package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var (
	alice = auth.Actor{UserID: "alice", Role: auth.RoleCustomer}
	admin = auth.Actor{UserID: "root", Role: auth.RoleAdmin}
)

func token(t *testing.T, a auth.Actor) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{UserID: a.UserID, Role: string(a.Role)}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func newTestAPI(handlers ...Registrar) http.Handler {
	return NewAPI(auth.NewVerifier(testSecret), handlers...)
}

func do(t *testing.T, h http.Handler, a auth.Actor, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+token(t, a))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
