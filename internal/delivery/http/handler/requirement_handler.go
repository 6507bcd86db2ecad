package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/delivery/http/dto"
	"contact-tracker/internal/infrastructure/spreadsheet"
	"contact-tracker/internal/pkg/response"
	"contact-tracker/internal/usecase"
)

type RequirementHandler struct {
	uc  *usecase.RequirementUsecase
	now func() time.Time
}

type createRequirementRequest struct {
	ContactID   string `json:"contact_id"`
	Role        string `json:"role"`
	Experience  string `json:"experience"`
	Skills      string `json:"skills"`
	Openings    *int   `json:"openings"`
	Description string `json:"description"`
}

func NewRequirementHandler(uc *usecase.RequirementUsecase) *RequirementHandler {
	return &RequirementHandler{uc: uc, now: time.Now}
}

func (h *RequirementHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/export", h.Export)
}

func (h *RequirementHandler) List(c fiber.Ctx) error {
	items, err := h.uc.List(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Requirement not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewRequirementViewResponses(items))
}

func (h *RequirementHandler) Create(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req createRequirementRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	r, err := h.uc.Create(c.Context(), p, usecase.RequirementInput{
		ContactID:   req.ContactID,
		Role:        req.Role,
		Experience:  req.Experience,
		Skills:      req.Skills,
		Openings:    req.Openings,
		Description: req.Description,
	})
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	return response.JSON(c, fiber.StatusCreated, dto.NewRequirementResponse(r))
}

func (h *RequirementHandler) Export(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	body, err := h.uc.Export(c.Context(), p)
	if err != nil {
		return mapUsecaseError(err, "Requirement not found")
	}
	name := "requirements_" + h.now().Format(time.DateOnly) + ".xlsx"
	return response.Attachment(c, name, spreadsheet.ContentTypeXLSX, body)
}

func (h *RequirementHandler) Delete(c fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("reqId")); err != nil {
		return mapUsecaseError(err, "Requirement not found")
	}
	return response.Message(c, fiber.StatusOK, "Requirement deleted")
}

func (h *RequirementHandler) DeleteAll(c fiber.Ctx) error {
	n, err := h.uc.DeleteAll(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Requirement not found")
	}
	return response.JSON(c, fiber.StatusOK, fiber.Map{"message": "All requirements cleared", "deleted": n})
}
