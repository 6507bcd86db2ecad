package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/delivery/http/dto"
	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/pkg/response"
	"contact-tracker/internal/usecase/admin"
	ucauth "contact-tracker/internal/usecase/auth"
)

const maxListLimit = 500

type AdminHandler struct {
	svc *admin.Service
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type updateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func NewAdminHandler(svc *admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// RegisterRoutes mounts the admin API. adminUp allows admin and superadmin,
// superOnly allows superadmin.
func (h *AdminHandler) RegisterRoutes(r fiber.Router, adminUp, superOnly fiber.Handler) {
	if r == nil {
		return
	}

	r.Get("/users", adminUp, h.ListUsers)
	r.Post("/create-user", superOnly, h.CreateUser)
	r.Patch("/users/:id/role", superOnly, h.UpdateRole)
	r.Patch("/users/:id/status", adminUp, h.UpdateStatus)
	r.Delete("/users/:id", superOnly, h.DeleteUser)
	r.Get("/users/:id/analytics", adminUp, h.Analytics)
	r.Get("/activities", adminUp, h.Activities)
	r.Get("/audit-logs", superOnly, h.AuditLogs)
}

func (h *AdminHandler) ListUsers(c fiber.Ctx) error {
	items, err := h.svc.ListUsers(c.Context())
	if err != nil {
		return mapUsecaseError(err, "User not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.UsersResponse{Users: dto.NewUserResponses(items)})
}

func (h *AdminHandler) CreateUser(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	role := user.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		role = user.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	}
	usr, err := h.svc.CreateUser(c.Context(), p, ucauth.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return mapUsecaseError(err, "User not found")
	}
	return response.JSON(c, fiber.StatusCreated, dto.CreateUserResponse{Message: "User created", User: dto.NewUserResponse(usr)})
}

func (h *AdminHandler) UpdateRole(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	if err := h.svc.UpdateRole(c.Context(), p, c.Params("id"), req.Role); err != nil {
		return mapAdminError(err)
	}
	return response.Message(c, fiber.StatusOK, "Role updated")
}

func (h *AdminHandler) UpdateStatus(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	if req.IsActive == nil {
		return badRequest("is_active must be a boolean", nil)
	}

	if err := h.svc.UpdateStatus(c.Context(), p, c.Params("id"), *req.IsActive); err != nil {
		return mapAdminError(err)
	}
	return response.Message(c, fiber.StatusOK, "Status updated")
}

func (h *AdminHandler) DeleteUser(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteUser(c.Context(), p, c.Params("id")); err != nil {
		return mapAdminError(err)
	}
	return response.Message(c, fiber.StatusOK, "User deleted")
}

func (h *AdminHandler) Analytics(c fiber.Ctx) error {
	days, err := queryInt(c, "days")
	if err != nil {
		return badRequest("days must be a number", err)
	}

	a, err := h.svc.UserAnalytics(c.Context(), c.Params("id"), days)
	if err != nil {
		return mapUsecaseError(err, "User not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewAnalyticsResponse(a))
}

func (h *AdminHandler) Activities(c fiber.Ctx) error {
	f, err := activityFilter(c)
	if err != nil {
		return err
	}

	items, err := h.svc.Activities(c.Context(), f)
	if err != nil {
		return mapUsecaseError(err, "Activity not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewActivityResponses(items))
}

func (h *AdminHandler) AuditLogs(c fiber.Ctx) error {
	f, err := activityFilter(c)
	if err != nil {
		return err
	}

	items, err := h.svc.AuditLogs(c.Context(), f)
	if err != nil {
		return mapUsecaseError(err, "Audit log not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewAuditResponses(items))
}

func mapAdminError(err error) error {
	if errors.Is(err, admin.ErrLastSuperAdmin) {
		return middleware.NewAppError(fiber.StatusConflict, "Cannot remove the last superadmin", nil, err)
	}
	return mapUsecaseError(err, "User not found")
}

func activityFilter(c fiber.Ctx) (activity.Filter, error) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return activity.Filter{}, badRequest("limit must be a number", err)
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return activity.Filter{}, badRequest("offset must be a number", err)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return activity.Filter{
		UserID:     strings.TrimSpace(c.Query("user_id")),
		ActionType: strings.TrimSpace(c.Query("action_type")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// queryInt returns 0 for an absent parameter.
func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}
