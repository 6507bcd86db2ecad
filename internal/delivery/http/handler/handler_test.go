package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/domain/importing"
	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/infrastructure/spreadsheet"
	"contact-tracker/internal/usecase"
	"contact-tracker/internal/usecase/admin"
	ucauth "contact-tracker/internal/usecase/auth"
)

type fakeAuth struct {
	loginErr    error
	registerErr error
	refreshErr  error

	gotRefresh string
	gotLogout  string
}

func (f *fakeAuth) Register(_ context.Context, in ucauth.RegisterInput) (user.User, error) {
	if f.registerErr != nil {
		return user.User{}, f.registerErr
	}
	return user.User{ID: "u-new", Name: in.Name, Email: in.Email}, nil
}

func (f *fakeAuth) Login(_ context.Context, in ucauth.LoginInput) (usecase.Session, error) {
	if f.loginErr != nil {
		return usecase.Session{}, f.loginErr
	}
	return usecase.Session{
		User:         user.User{ID: "u-1", Email: in.Email, Role: user.RoleUser, IsActive: true},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, tok string) (usecase.Session, error) {
	f.gotRefresh = tok
	if f.refreshErr != nil {
		return usecase.Session{}, f.refreshErr
	}
	return usecase.Session{User: user.User{ID: "u-1"}, AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (f *fakeAuth) Logout(_ context.Context, tok string) { f.gotLogout = tok }

func (f *fakeAuth) Me(_ context.Context, p user.Principal) (user.User, error) {
	return user.User{ID: p.UserID, Email: p.Email, Role: p.Role, IsActive: true}, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func withPrincipal(p user.Principal) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals(middleware.CtxPrincipalKey, p)
		return c.Next()
	}
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	b, _ := io.ReadAll(resp.Body)
	var body map[string]any
	_ = json.Unmarshal(b, &body)
	return resp, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_LoginSetsRefreshCookie(t *testing.T) {
	app := newApp()
	h := NewAuthHandler(&fakeAuth{}, CookieConfig{Secure: true, MaxAge: time.Hour})
	h.RegisterRoutes(app.Group("/auth"), withPrincipal(user.Principal{}))

	resp, body := send(t, app, jsonRequest(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"secret1"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "access-1", body["access_token"])
	assert.Equal(t, "refresh-1", body["refresh_token"])

	ck := cookieNamed(resp, RefreshCookieName)
	require.NotNil(t, ck)
	assert.Equal(t, "refresh-1", ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, 3600, ck.MaxAge)
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{ucauth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{&ucauth.ValidationError{Reason: "email is required"}, http.StatusBadRequest, "Validation failed: email is required"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		app := newApp()
		NewAuthHandler(&fakeAuth{loginErr: tc.err}, CookieConfig{}).RegisterRoutes(app.Group("/auth"), withPrincipal(user.Principal{}))

		resp, body := send(t, app, jsonRequest(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"x"}`))
		assert.Equal(t, tc.status, resp.StatusCode)
		assert.Equal(t, tc.msg, body["error"])
	}
}

func TestAuthHandler_Register(t *testing.T) {
	app := newApp()
	NewAuthHandler(&fakeAuth{}, CookieConfig{}).RegisterRoutes(app.Group("/auth"), withPrincipal(user.Principal{}))

	resp, body := send(t, app, jsonRequest(http.MethodPost, "/auth/register", `{"name":"A","email":"a@x.com","password":"secret1"}`))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u-new", body["user_id"])

	app = newApp()
	NewAuthHandler(&fakeAuth{registerErr: ucauth.ErrEmailAlreadyRegistered}, CookieConfig{}).RegisterRoutes(app.Group("/auth"), withPrincipal(user.Principal{}))
	resp, body = send(t, app, jsonRequest(http.MethodPost, "/auth/register", `{"name":"A","email":"a@x.com","password":"secret1"}`))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already registered", body["error"])
}

func TestAuthHandler_RefreshTokenSources(t *testing.T) {
	fa := &fakeAuth{}
	app := newApp()
	NewAuthHandler(fa, CookieConfig{}).RegisterRoutes(app.Group("/auth"), withPrincipal(user.Principal{}))

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "from-cookie"})
	resp, body := send(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "from-cookie", fa.gotRefresh)
	assert.Equal(t, "access-2", body["access_token"])

	resp, _ = send(t, app, jsonRequest(http.MethodPost, "/auth/refresh", `{"refresh_token":"from-body"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "from-body", fa.gotRefresh)

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	resp, _ = send(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "from-header", fa.gotRefresh)

	resp, body = send(t, app, httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authenticated", body["error"])
}

func TestAuthHandler_RefreshExpired(t *testing.T) {
	app := newApp()
	NewAuthHandler(&fakeAuth{refreshErr: usecase.ErrRefreshTokenExpired}, CookieConfig{}).RegisterRoutes(app.Group("/auth"), withPrincipal(user.Principal{}))

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old")
	resp, body := send(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token expired", body["error"])
}

func TestAuthHandler_LogoutClearsCookie(t *testing.T) {
	fa := &fakeAuth{}
	app := newApp()
	NewAuthHandler(fa, CookieConfig{}).RegisterRoutes(app.Group("/auth"), withPrincipal(user.Principal{}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "tok"})
	resp, body := send(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out", body["message"])
	assert.Equal(t, "tok", fa.gotLogout)

	ck := cookieNamed(resp, RefreshCookieName)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
}

func TestAuthHandler_Me(t *testing.T) {
	app := newApp()
	p := user.Principal{UserID: "u-9", Email: "me@x.com", Role: user.RoleAdmin}
	NewAuthHandler(&fakeAuth{}, CookieConfig{}).RegisterRoutes(app.Group("/auth"), withPrincipal(p))

	resp, body := send(t, app, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u-9", body["id"])
	assert.Equal(t, "admin", body["role"])
}

func TestHealthHandler(t *testing.T) {
	app := newApp()
	NewHealthHandler(stubPinger{}, nil).RegisterRoutes(app)

	resp, body := send(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, "disabled", body["cache"])

	app = newApp()
	NewHealthHandler(stubPinger{err: errors.New("down")}, stubPinger{}).RegisterRoutes(app)
	resp, body = send(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "down", body["database"])
	assert.Equal(t, "up", body["cache"])
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	return uploadContent(t, filename, []byte("name,email\n"))
}

func uploadContent(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImportHandler_RejectsNonSpreadsheet(t *testing.T) {
	app := newApp()
	h := NewImportHandler(nil, UploadConfig{TempDir: t.TempDir()}, nil)
	app.Post("/import", withPrincipal(user.Principal{UserID: "u-1"}), h.Import)

	resp, body := send(t, app, uploadRequest(t, "contacts.csv"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only Excel files are allowed", body["error"])
}

func TestImportHandler_MissingFile(t *testing.T) {
	app := newApp()
	h := NewImportHandler(nil, UploadConfig{TempDir: t.TempDir()}, nil)
	app.Post("/import", withPrincipal(user.Principal{UserID: "u-1"}), h.Import)

	resp, body := send(t, app, jsonRequest(http.MethodPost, "/import", `{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file uploaded", body["error"])
}

func TestImportHandler_RequiresPrincipal(t *testing.T) {
	app := newApp()
	h := NewImportHandler(nil, UploadConfig{}, nil)
	app.Post("/import", h.Import)

	resp, body := send(t, app, uploadRequest(t, "contacts.xlsx"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authenticated", body["error"])
}

// emptyStoreWriter accepts every reconciled row against an empty table.
type emptyStoreWriter struct{ manifests []importing.Manifest }

func (emptyStoreWriter) ExistingEmails(context.Context, []string) ([]string, error) { return nil, nil }
func (emptyStoreWriter) ExistingPhones(context.Context, []string) ([]string, error) { return nil, nil }

func (w *emptyStoreWriter) Write(ctx context.Context, m importing.Manifest, reconcile importing.ReconcileFunc) (importing.Outcome, error) {
	w.manifests = append(w.manifests, m)
	rec, err := reconcile(ctx, w)
	if err != nil {
		return importing.Outcome{}, err
	}
	return importing.Outcome{Added: len(rec.Accepted), Skipped: rec.Skipped}, nil
}

func newImportApp(t *testing.T, writer importing.Writer, dir string) *fiber.App {
	t.Helper()
	uc := usecase.NewImportUsecase(nil, writer, spreadsheet.ReadFirstSheet, usecase.Deps{}, nil)
	h := NewImportHandler(uc, UploadConfig{TempDir: dir, CleanupDelay: 10 * time.Millisecond}, nil)
	app := newApp()
	app.Post("/import", withPrincipal(user.Principal{UserID: "u-1"}), h.Import)
	return app
}

func assertUploadsRemoved(t *testing.T, dir string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestImportHandler_ImportsWorkbook(t *testing.T) {
	dir := t.TempDir()
	writer := &emptyStoreWriter{}
	app := newImportApp(t, writer, dir)

	book, err := spreadsheet.WriteWorkbook("Contacts",
		[]spreadsheet.Column{{Header: "Name"}, {Header: "Email"}, {Header: "Phone"}},
		[][]any{
			{"Alice", "a@x.com", "111"},
			{"Bob", "", "222"},
			{"", "", ""},
			{"Al2", "a@x.com", ""},
		})
	require.NoError(t, err)

	resp, body := send(t, app, uploadContent(t, "contacts.xlsx", book))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["added"])
	assert.EqualValues(t, 1, body["skipped"])
	assert.Equal(t, []any{}, body["errors"])
	require.Len(t, writer.manifests, 1)
	assert.Equal(t, "contacts.xlsx", writer.manifests[0].Filename)
	assert.Equal(t, "u-1", writer.manifests[0].ImportedBy)
	assertUploadsRemoved(t, dir)
}

func TestImportHandler_UnreadableWorkbookIsFatal(t *testing.T) {
	dir := t.TempDir()
	writer := &emptyStoreWriter{}
	app := newImportApp(t, writer, dir)

	resp, body := send(t, app, uploadContent(t, "broken.xlsx", []byte("not a zip archive")))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	msg, _ := body["error"].(string)
	assert.True(t, strings.HasPrefix(msg, "import failed"), msg)
	assert.Empty(t, writer.manifests)
	assertUploadsRemoved(t, dir)
}

func TestAdminHandler_RequestValidation(t *testing.T) {
	app := newApp()
	h := NewAdminHandler(nil)
	asSuper := withPrincipal(user.Principal{UserID: "u-1", Role: user.RoleSuperAdmin})
	h.RegisterRoutes(app.Group("/admin", asSuper), asSuper, asSuper)

	resp, body := send(t, app, jsonRequest(http.MethodPatch, "/admin/users/u-2/status", `{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "is_active must be a boolean", body["error"])

	resp, body = send(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/u-2/analytics?days=abc", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "days must be a number", body["error"])

	resp, body = send(t, app, httptest.NewRequest(http.MethodGet, "/admin/activities?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "limit must be a number", body["error"])
}

func TestMapUsecaseError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&usecase.InputError{Msg: "Name is required"}, fiber.StatusBadRequest, "Name is required"},
		{usecase.ErrNotFound, fiber.StatusNotFound, "Thing not found"},
		{fmt.Errorf("wrapped: %w", usecase.ErrForbidden), fiber.StatusForbidden, "Access denied"},
		{usecase.ErrUnauthorized, fiber.StatusUnauthorized, "Not authenticated"},
		{fmt.Errorf("%w: db down", usecase.ErrInternal), fiber.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		var appErr *middleware.AppError
		require.True(t, errors.As(mapUsecaseError(tc.err, "Thing not found"), &appErr))
		assert.Equal(t, tc.status, appErr.StatusCode)
		assert.Equal(t, tc.msg, appErr.Message)
	}
	assert.Nil(t, mapUsecaseError(nil, ""))
}

func TestMapAdminError_LastSuperAdmin(t *testing.T) {
	err := fmt.Errorf("%w: %w", usecase.ErrConflict, admin.ErrLastSuperAdmin)

	var appErr *middleware.AppError
	require.True(t, errors.As(mapAdminError(err), &appErr))
	assert.Equal(t, fiber.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "Cannot remove the last superadmin", appErr.Message)
}
