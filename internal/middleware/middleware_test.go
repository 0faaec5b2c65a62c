package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/config"
	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/repository"
	"github.com/MathiAviles/abogapp/internal/utils"
)

const secret = "test-secret"

func newEcho() *echo.Echo {
	e := echo.New()
	e.GET("/open", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user": userKey(c)})
	})
	g := e.Group("/api", JWTAuth(secret))
	g.GET("/who", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": Role(c)})
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		RequireRole("admin", "backoffice"))
	return e
}

func do(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, role, time.Minute)
	require.NoError(t, err)
	return tok.Token
}

func TestJWTAuth(t *testing.T) {
	e := newEcho()

	rec := do(e, "/api/who", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/api/who", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/api/who", token(t, 7, "cliente"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"role":"cliente"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := newEcho()
	tests := []struct {
		role string
		want int
	}{
		{"admin", http.StatusNoContent},
		{"backoffice", http.StatusNoContent},
		{"cliente", http.StatusForbidden},
		{"abogado", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			rec := do(e, "/api/admin", token(t, 1, tt.role))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequestLoggerAssignsID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zap.NewNop()))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, RequestID(c)) })

	rec := do(e, "/x", "")
	rid := rec.Header().Get(HeaderRequestID)
	assert.Len(t, rid, 36)
	assert.Equal(t, rid, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "4f1c2b7e-3d7a-4d55-9a43-0d8c6f2b9e10")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "4f1c2b7e-3d7a-4d55-9a43-0d8c6f2b9e10", rec.Body.String())
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/meetings", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/meetings")
	c.Set(ctxUserID, uint64(9))

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	assert.Equal(t, "rl:user:9:route:POST /api/meetings", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(cfg, c))
}

func TestCacheKeyUsesConcretePath(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	key := func(path string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		c.SetPath("/api/abogado/perfil/:id")
		return cacheKeyFrom(cfg, c)
	}
	assert.NotEqual(t, key("/api/abogado/perfil/1"), key("/api/abogado/perfil/2"))
	assert.Equal(t, key("/api/abogado/perfil/1"), key("/api/abogado/perfil/1"))
}

func TestPayloadCodec(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(200, h, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, hdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, 200, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

type accounts map[uint64]model.User

func (a accounts) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := a[id]
	if !ok {
		return u, repository.ErrUserNotFound
	}
	return u, nil
}

func TestRequireAccountRole(t *testing.T) {
	users := accounts{
		1: {ID: 1, Role: "admin", IsActive: true},
		2: {ID: 2, Role: "backoffice", IsActive: true},
		3: {ID: 3, Role: "cliente", IsActive: true},
		4: {ID: 4, Role: "admin", IsActive: false},
	}
	e := echo.New()
	g := e.Group("/api", JWTAuth(secret), RequireAccountRole(users, "admin", "backoffice"))
	g.GET("/staff", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"role": Role(c)})
	})

	tests := []struct {
		name  string
		id    uint64
		claim string
		want  int
		role  string
	}{
		{"stored admin", 1, "admin", http.StatusOK, "admin"},
		{"stored role wins over claim", 2, "admin", http.StatusOK, "backoffice"},
		{"client with forged claim", 3, "admin", http.StatusForbidden, ""},
		{"deactivated admin", 4, "admin", http.StatusForbidden, ""},
		{"unknown account", 9, "admin", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, "/api/staff", token(t, tt.id, tt.claim))
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.role != "" {
				assert.JSONEq(t, `{"role":"`+tt.role+`"}`, rec.Body.String())
			}
		})
	}
}
