package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/delivery/http/dto"
	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/pkg/response"
	"contact-tracker/internal/usecase"
	ucauth "contact-tracker/internal/usecase/auth"
)

// RefreshCookieName holds the refresh token for browser clients.
const RefreshCookieName = "jid"

// CookieConfig controls the refresh token cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	uc     usecase.AuthUsecase
	cookie CookieConfig
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func NewAuthHandler(uc usecase.AuthUsecase, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{uc: uc, cookie: cookie}
}

// RegisterRoutes mounts the public auth endpoints and /me behind requireAuth.
func (h *AuthHandler) RegisterRoutes(r fiber.Router, requireAuth fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	r.Get("/me", requireAuth, h.Me)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	usr, err := h.uc.Register(c.Context(), ucauth.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.JSON(c, fiber.StatusCreated, dto.RegisterResponse{Message: "User registered", UserID: usr.ID})
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	s, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	h.setRefreshCookie(c, s.RefreshToken)
	return response.JSON(c, fiber.StatusOK, dto.NewSessionResponse(s.AccessToken, s.RefreshToken, s.User))
}

// Refresh reads the refresh token from the cookie, the request body or the
// Authorization header, in that order.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok := h.refreshToken(c)
	if tok == "" {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, nil)
	}

	s, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRefreshTokenExpired):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		case errors.Is(err, usecase.ErrInvalidRefreshToken):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		case errors.Is(err, usecase.ErrUnauthorized):
			return middleware.NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	h.setRefreshCookie(c, s.RefreshToken)
	return response.JSON(c, fiber.StatusOK, dto.NewSessionResponse(s.AccessToken, s.RefreshToken, s.User))
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	h.uc.Logout(c.Context(), h.refreshToken(c))
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return response.Message(c, fiber.StatusOK, "Logged out")
}

func (h *AuthHandler) Me(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	usr, err := h.uc.Me(c.Context(), p)
	if err != nil {
		return mapUsecaseError(err, "User not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewUserResponse(usr))
}

func (h *AuthHandler) setRefreshCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
		MaxAge:   int(h.cookie.MaxAge / time.Second),
	})
}

func (h *AuthHandler) refreshToken(c fiber.Ctx) string {
	if tok := c.Cookies(RefreshCookieName); tok != "" {
		return tok
	}
	if len(c.Body()) > 0 {
		var req refreshRequest
		if err := c.Bind().Body(&req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}
	tok, _ := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	return tok
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var vErr *ucauth.ValidationError
	switch {
	case errors.As(err, &vErr):
		return middleware.NewAppError(fiber.StatusBadRequest, vErr.Error(), nil, err)
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", nil, err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
