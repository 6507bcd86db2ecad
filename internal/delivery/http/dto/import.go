package dto

import (
	"time"

	"contact-tracker/internal/domain/contact"
	"contact-tracker/internal/domain/importing"
)

type ImportResultResponse struct {
	ImportID string   `json:"import_id"`
	Added    int      `json:"added"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

type ImportResponse struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	ImportedAt   time.Time `json:"imported_at"`
	AddedCount   int       `json:"added_count"`
	SkippedCount int       `json:"skipped_count"`
	ImportedBy   *string   `json:"imported_by"`
	ContactCount int       `json:"contact_count"`
}

type DeleteImportResponse struct {
	Message         string `json:"message"`
	DeletedContacts int64  `json:"deleted_contacts"`
}

func NewImportResultResponse(r importing.Result) ImportResultResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return ImportResultResponse{ImportID: r.ImportID, Added: r.Added, Skipped: r.Skipped, Errors: errs}
}

func NewImportResponses(items []contact.Import) []ImportResponse {
	out := make([]ImportResponse, 0, len(items))
	for _, i := range items {
		r := ImportResponse{
			ID:           i.ID,
			Filename:     i.Filename,
			ImportedAt:   i.ImportedAt,
			AddedCount:   i.AddedCount,
			SkippedCount: i.SkippedCount,
			ContactCount: i.ContactCount,
		}
		if i.ImportedBy != "" {
			by := i.ImportedBy
			r.ImportedBy = &by
		}
		out = append(out, r)
	}
	return out
}
