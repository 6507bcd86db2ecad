package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/infrastructure/azuread"
	"contact-tracker/internal/pkg/jwt"
)

const CtxPrincipalKey = "principal"

// TokenVerifier validates directory-issued tokens.
type TokenVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token string) (user.Principal, error)
}

// AuthMiddleware accepts both locally issued access tokens and Azure AD
// tokens. The unverified issuer decides which validator runs.
type AuthMiddleware struct {
	jwt   jwt.Service
	azure TokenVerifier
}

func NewAuthMiddleware(jwtSvc jwt.Service, azure TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc, azure: azure}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, nil)
		}

		var (
			p   user.Principal
			err error
		)
		if azuread.IssuedByAzure(token) {
			p, err = m.verifyAzure(c.Context(), token)
		} else {
			p, err = m.verifyLocal(token)
		}
		if err != nil {
			return err
		}

		c.Locals(CtxPrincipalKey, p)
		return c.Next()
	}
}

func (m *AuthMiddleware) verifyAzure(ctx context.Context, token string) (user.Principal, error) {
	if m.azure == nil || !m.azure.Enabled() {
		return user.Principal{}, NewAppError(fiber.StatusUnauthorized, "Azure AD authentication is not configured", nil, nil)
	}
	p, err := m.azure.Verify(ctx, token)
	if err != nil {
		return user.Principal{}, NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}
	return p, nil
}

func (m *AuthMiddleware) verifyLocal(token string) (user.Principal, error) {
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.Principal{}, NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		}
		return user.Principal{}, NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}
	if claims.TokenType != jwt.TokenTypeAccess || m.jwt.IsRefreshToken(claims) {
		return user.Principal{}, NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
	}

	role := user.Role(claims.Role)
	if role == "" {
		role = user.RoleUser
	}
	return user.Principal{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Name:     claims.Name,
		Role:     role,
		Provider: user.ProviderLocal,
	}, nil
}

// PrincipalFrom returns the authenticated caller set by AuthMiddleware.
func PrincipalFrom(c fiber.Ctx) (user.Principal, bool) {
	p, ok := c.Locals(CtxPrincipalKey).(user.Principal)
	return p, ok
}

// RequireRoles admits callers holding any of roles.
func RequireRoles(roles ...user.Role) fiber.Handler {
	allowed := make(map[user.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, nil)
		}
		if !allowed[p.Role] {
			return NewAppError(fiber.StatusForbidden, "Access denied", nil, nil)
		}
		return c.Next()
	}
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
