package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/pkg/jwt"
)

type stubVerifier struct {
	enabled bool
	p       user.Principal
	err     error
}

func (s stubVerifier) Enabled() bool { return s.enabled }
func (s stubVerifier) Verify(context.Context, string) (user.Principal, error) {
	return s.p, s.err
}

func newJWT() *jwt.HMACService {
	return jwt.NewHMACService("access", "refresh", time.Minute, time.Hour)
}

// azureShapedToken has an Azure issuer but is not signed.
func azureShapedToken() string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT","kid":"k"}`))
	payload := enc.EncodeToString([]byte(`{"iss":"https://login.microsoftonline.com/t/v2.0","sub":"s"}`))
	return header + "." + payload + "." + enc.EncodeToString([]byte("sig"))
}

func newTestApp(auth *AuthMiddleware, roles ...user.Role) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(nil).Middleware())
	app.Use(auth.Middleware())
	if len(roles) > 0 {
		app.Use(RequireRoles(roles...))
	}
	app.Get("/me", func(c fiber.Ctx) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(p)
	})
	return app
}

func do(t *testing.T, app *fiber.App, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	var body map[string]any
	_ = json.Unmarshal(b, &body)
	return resp.StatusCode, body
}

func TestAuthMiddleware_LocalToken(t *testing.T) {
	svc := newJWT()
	tok, err := svc.GenerateAccessToken(jwt.Subject{UserID: "u-1", Email: "a@x.com", Name: "A", Role: "admin"})
	require.NoError(t, err)

	app := newTestApp(NewAuthMiddleware(svc, nil))
	status, body := do(t, app, tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-1", body["UserID"])
	assert.Equal(t, "admin", body["Role"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	svc := newJWT()
	refresh, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)

	app := newTestApp(NewAuthMiddleware(svc, nil))

	status, body := do(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Not authenticated", body["error"])

	status, _ = do(t, app, refresh)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = do(t, app, azureShapedToken())
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Azure AD authentication is not configured", body["error"])
}

func TestAuthMiddleware_AzureToken(t *testing.T) {
	v := stubVerifier{enabled: true, p: user.Principal{UserID: "oid", Role: user.RoleUser, Provider: user.ProviderAzure}}
	app := newTestApp(NewAuthMiddleware(newJWT(), v))

	status, body := do(t, app, azureShapedToken())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "oid", body["UserID"])

	v.err = errors.New("bad signature")
	app = newTestApp(NewAuthMiddleware(newJWT(), v))
	status, _ = do(t, app, azureShapedToken())
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequireRoles(t *testing.T) {
	svc := newJWT()
	userTok, _ := svc.GenerateAccessToken(jwt.Subject{UserID: "u", Role: "user"})
	adminTok, _ := svc.GenerateAccessToken(jwt.Subject{UserID: "a", Role: "admin"})

	app := newTestApp(NewAuthMiddleware(svc, nil), user.RoleAdmin, user.RoleSuperAdmin)

	status, body := do(t, app, userTok)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied", body["error"])

	status, _ = do(t, app, adminTok)
	assert.Equal(t, http.StatusOK, status)
}

func TestErrorMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(NewErrorMiddleware(nil).Middleware())
	app.Get("/hidden", func(fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "db password leaked", nil, errors.New("x"))
	})
	app.Get("/exposed", func(fiber.Ctx) error {
		return NewExposedError(fiber.StatusInternalServerError, "open workbook: zip: not a valid zip file", nil)
	})
	app.Get("/panic", func(fiber.Ctx) error { panic("boom") })
	app.Get("/bad", func(fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "nope") })

	cases := []struct {
		path   string
		status int
		msg    string
	}{
		{"/hidden", 500, "internal server error"},
		{"/exposed", 500, "open workbook: zip: not a valid zip file"},
		{"/panic", 500, "internal server error"},
		{"/bad", 400, "nope"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()
		assert.Equal(t, tc.status, resp.StatusCode, tc.path)
		assert.Equal(t, tc.msg, body["error"], tc.path)
	}
}

func TestAccessLog_SetsRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(nil).Middleware())
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "fixed")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.Header.Get(HeaderRequestID))
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer   "} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
