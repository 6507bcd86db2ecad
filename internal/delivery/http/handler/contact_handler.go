package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/delivery/http/dto"
	"contact-tracker/internal/infrastructure/spreadsheet"
	"contact-tracker/internal/pkg/response"
	"contact-tracker/internal/usecase"
)

type ContactHandler struct {
	contacts  *usecase.ContactUsecase
	followUps *usecase.FollowUpUsecase
	now       func() time.Time
}

type addContactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Designation string `json:"designation"`
}

type addLogRequest struct {
	ContactedBy  string `json:"contacted_by"`
	Response     string `json:"response"`
	FollowUpDate string `json:"follow_up_date"`
	Notes        string `json:"notes"`
}

func NewContactHandler(contacts *usecase.ContactUsecase, followUps *usecase.FollowUpUsecase) *ContactHandler {
	return &ContactHandler{contacts: contacts, followUps: followUps, now: time.Now}
}

func (h *ContactHandler) Add(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req addContactRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	res, err := h.contacts.AddContact(c.Context(), p, usecase.ContactInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Designation: req.Designation,
	})
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}

	status := fiber.StatusCreated
	if res.Existing {
		status = fiber.StatusOK
	}
	return response.JSON(c, status, dto.AddContactResponse{Existing: res.Existing, Contact: dto.NewContactResponse(res.Contact)})
}

func (h *ContactHandler) List(c fiber.Ctx) error {
	items, err := h.contacts.List(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewContactWithLogResponses(items))
}

func (h *ContactHandler) Count(c fiber.Ctx) error {
	n, err := h.contacts.Count(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.CountResponse{Count: n})
}

func (h *ContactHandler) Get(c fiber.Ctx) error {
	item, err := h.contacts.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewContactResponse(item))
}

func (h *ContactHandler) Export(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	body, err := h.contacts.Export(c.Context(), p)
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	name := "contacts_" + h.now().Format(time.DateOnly) + ".xlsx"
	return response.Attachment(c, name, spreadsheet.ContentTypeXLSX, body)
}

func (h *ContactHandler) ClearAll(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	n, err := h.contacts.ClearAll(c.Context(), p)
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	return response.JSON(c, fiber.StatusOK, fiber.Map{"message": "All contacts cleared", "deleted": n})
}

func (h *ContactHandler) AddLog(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req addLogRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	l, err := h.followUps.AddLog(c.Context(), p, c.Params("id"), usecase.LogInput{
		ContactedBy:  req.ContactedBy,
		Response:     req.Response,
		FollowUpDate: req.FollowUpDate,
		Notes:        req.Notes,
	})
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	return response.JSON(c, fiber.StatusCreated, dto.NewLogResponse(l))
}

func (h *ContactHandler) Logs(c fiber.Ctx) error {
	items, err := h.followUps.Logs(c.Context(), c.Params("id"))
	if err != nil {
		return mapUsecaseError(err, "Contact not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewLogResponses(items))
}

func (h *ContactHandler) DeleteLog(c fiber.Ctx) error {
	if err := h.followUps.DeleteLog(c.Context(), c.Params("logId")); err != nil {
		return mapUsecaseError(err, "Log not found")
	}
	return response.Message(c, fiber.StatusOK, "Log deleted")
}

func (h *ContactHandler) PendingFollowUps(c fiber.Ctx) error {
	items, err := h.followUps.Pending(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Follow-up not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewFollowUpResponses(items))
}

func (h *ContactHandler) AllFollowUps(c fiber.Ctx) error {
	items, err := h.followUps.All(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Follow-up not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewFollowUpResponses(items))
}

func (h *ContactHandler) CompleteFollowUp(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	l, err := h.followUps.Complete(c.Context(), p, c.Params("logId"))
	if err != nil {
		return mapUsecaseError(err, "Follow-up not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewLogResponse(l))
}
