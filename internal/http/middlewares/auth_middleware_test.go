package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightkube/authhub/internal/auth"
	"github.com/brightkube/authhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token)
	}

	return nil, errors.New("invalid token")
}

func protectedRouter(v middlewares.TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	mw := middlewares.NewAuthMiddleware(v)

	chain := append([]gin.HandlerFunc{mw.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		role, _ := middlewares.RoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})

	r.GET("/protected", chain...)

	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRequireAuth(t *testing.T) {
	valid := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			if token != "good-token" {
				return nil, errors.New("invalid token")
			}

			return &auth.Claims{UserID: "u1", Email: "john@example.com", Role: "user"}, nil
		},
	}

	tests := []struct {
		name           string
		authorization  string
		wantStatusCode int
	}{
		{"missing_header", "", http.StatusUnauthorized},
		{"not_bearer", "Basic abc", http.StatusUnauthorized},
		{"empty_token", "Bearer ", http.StatusUnauthorized},
		{"bad_token", "Bearer bad-token", http.StatusUnauthorized},
		{"good_token", "Bearer good-token", http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := get(protectedRouter(valid), tt.authorization)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireAuthStashesIdentity(t *testing.T) {
	v := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			return &auth.Claims{UserID: "u1", Email: "john@example.com", Role: "user"}, nil
		},
	}

	w := get(protectedRouter(v), "Bearer anything")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()

	if body != `{"id":"u1","role":"user"}` {
		t.Fatalf("unexpected identity payload %s", body)
	}
}

func TestRequireRole(t *testing.T) {
	asRole := func(role string) *fakeVerifier {
		return &fakeVerifier{
			verifyFn: func(token string) (*auth.Claims, error) {
				return &auth.Claims{UserID: "u1", Role: role}, nil
			},
		}
	}

	adminOnly := func(v middlewares.TokenVerifier) *gin.Engine {
		mw := middlewares.NewAuthMiddleware(v)
		return protectedRouter(v, mw.RequireRole("admin"))
	}

	if w := get(adminOnly(asRole("admin")), "Bearer t"); w.Code != http.StatusOK {
		t.Fatalf("admin: got status %d, want %d", w.Code, http.StatusOK)
	}

	if w := get(adminOnly(asRole("user")), "Bearer t"); w.Code != http.StatusForbidden {
		t.Fatalf("user: got status %d, want %d", w.Code, http.StatusForbidden)
	}
}
