package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"contact-tracker/internal/delivery/http/dto"
	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/infrastructure/spreadsheet"
	"contact-tracker/internal/pkg/response"
	"contact-tracker/internal/usecase"
)

// UploadConfig controls where uploads are staged and how long they survive
// after the import returns.
type UploadConfig struct {
	TempDir      string
	CleanupDelay time.Duration
}

type ImportHandler struct {
	uc     *usecase.ImportUsecase
	upload UploadConfig
	logger *zap.Logger
}

func NewImportHandler(uc *usecase.ImportUsecase, upload UploadConfig, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if upload.TempDir == "" {
		upload.TempDir = os.TempDir()
	}
	return &ImportHandler{uc: uc, upload: upload, logger: logger}
}

func (h *ImportHandler) Import(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("No file uploaded", err)
	}
	if !spreadsheet.IsSpreadsheetName(fh.Filename) {
		return badRequest("Only Excel files are allowed", nil)
	}

	path := filepath.Join(h.upload.TempDir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveFile(fh, path); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	defer h.scheduleRemove(path)

	res, err := h.uc.Import(c.Context(), p, usecase.Upload{Filename: fh.Filename, Path: path})
	if err != nil {
		if errors.Is(err, usecase.ErrImportFailed) {
			return middleware.NewExposedError(fiber.StatusInternalServerError, err.Error(), err)
		}
		return mapUsecaseError(err, "Import not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewImportResultResponse(res))
}

func (h *ImportHandler) List(c fiber.Ctx) error {
	items, err := h.uc.ListImports(c.Context())
	if err != nil {
		return mapUsecaseError(err, "Import not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewImportResponses(items))
}

func (h *ImportHandler) Contacts(c fiber.Ctx) error {
	items, err := h.uc.ImportContacts(c.Context(), c.Params("id"))
	if err != nil {
		return mapUsecaseError(err, "Import not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.NewContactResponses(items))
}

func (h *ImportHandler) Delete(c fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	n, err := h.uc.DeleteImport(c.Context(), p, c.Params("id"))
	if err != nil {
		return mapUsecaseError(err, "Import not found")
	}
	return response.JSON(c, fiber.StatusOK, dto.DeleteImportResponse{Message: "Import deleted", DeletedContacts: n})
}

// scheduleRemove deletes the staged upload shortly after the request ends.
func (h *ImportHandler) scheduleRemove(path string) {
	time.AfterFunc(h.upload.CleanupDelay, func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("failed to remove upload", zap.String("path", path), zap.Error(err))
		}
	})
}
