package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contact-tracker/internal/domain/activity"
	"contact-tracker/internal/domain/contact"
	"contact-tracker/internal/domain/importing"
	"contact-tracker/internal/domain/user"
)

const keyImportsList = "contacts:imports"

// ErrImportFailed wraps failures that abort a whole import. Its message is
// returned to the client.
var ErrImportFailed = errors.New("import failed")

// SheetReader loads the first worksheet of an uploaded file.
type SheetReader func(path string) ([][]string, error)

type Upload struct {
	Filename string
	Path     string
}

type ImportUsecase struct {
	imports contact.ImportRepository
	writer  importing.Writer
	read    SheetReader
	deps    Deps
	logger  *zap.Logger
	now     func() time.Time
}

func NewImportUsecase(imports contact.ImportRepository, writer importing.Writer, read SheetReader, deps Deps, logger *zap.Logger) *ImportUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportUsecase{
		imports: imports,
		writer:  writer,
		read:    read,
		deps:    deps.WithDefaults(),
		logger:  logger,
		now:     time.Now,
	}
}

// Import classifies, extracts, reconciles and stores one spreadsheet.
// Row-level failures are reported in the result; anything else rolls the
// whole import back.
func (u *ImportUsecase) Import(ctx context.Context, actor user.Principal, up Upload) (importing.Result, error) {
	report := importing.NewReport(uuid.NewString(), up.Filename, u.now().UTC())
	log := u.logger.With(zap.String("import_id", report.ImportID), zap.String("filename", up.Filename))

	fail := func(err error) (importing.Result, error) {
		_ = report.Advance(importing.StateRolledBack)
		report.Finished = u.now().UTC()
		log.Error("import rolled back", zap.String("state", string(report.State)), zap.Error(err))
		return importing.Result{}, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	rows, err := u.read(up.Path)
	if err != nil {
		return fail(err)
	}

	cls := importing.Classify(rows)
	if err := report.Advance(importing.StateClassified); err != nil {
		return fail(err)
	}
	log.Debug("sheet classified",
		zap.Bool("header_detected", cls.HeaderRow > 0),
		zap.Int("detected_fields", len(cls.Detected)),
		zap.Int("header_row", cls.HeaderRow),
		zap.Int("data_start_row", cls.DataStartRow),
	)

	cands := importing.Extract(rows, cls)
	if err := report.Advance(importing.StateExtracted); err != nil {
		return fail(err)
	}

	manifest := importing.Manifest{
		ID:         report.ImportID,
		Filename:   up.Filename,
		ImportedAt: report.Started,
		ImportedBy: actor.UserID,
	}
	out, err := u.writer.Write(ctx, manifest, func(ctx context.Context, lookup importing.ExistingLookup) (importing.Reconciliation, error) {
		rec, err := importing.Reconcile(ctx, cands, lookup)
		if err != nil {
			return importing.Reconciliation{}, err
		}
		if err := report.Advance(importing.StateReconciled); err != nil {
			return importing.Reconciliation{}, err
		}
		return rec, nil
	})
	if err != nil {
		return fail(err)
	}

	report.Added = out.Added
	report.Skipped = out.Skipped
	for _, re := range out.RowErrors {
		report.RowError(re.Row, re.Err)
	}
	if err := report.Advance(importing.StatePersisted); err != nil {
		return fail(err)
	}
	report.Finished = u.now().UTC()

	log.Info("import persisted",
		zap.Int("candidates", len(cands)),
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("row_errors", len(report.Errors)),
		zap.Duration("took", report.Finished.Sub(report.Started)),
	)

	res := report.Result()
	_ = u.deps.Cache.InvalidateContacts(ctx)
	u.deps.Events.Publish(EventContactsImported, map[string]any{
		"import_id": res.ImportID,
		"added":     res.Added,
		"skipped":   res.Skipped,
	})
	u.deps.Recorder.Activity(actor, activity.ActionImport,
		fmt.Sprintf("Imported %d contacts from %s", res.Added, up.Filename), "", "",
		map[string]any{"import_id": res.ImportID, "added": res.Added, "skipped": res.Skipped, "errors": len(res.Errors)})

	return res, nil
}

func (u *ImportUsecase) ListImports(ctx context.Context) ([]contact.Import, error) {
	var cached []contact.Import
	if ok, _ := u.deps.Cache.GetJSON(ctx, keyImportsList, &cached); ok {
		return cached, nil
	}
	items, err := u.imports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list imports: %v", ErrInternal, err)
	}
	_ = u.deps.Cache.SetJSON(ctx, keyImportsList, items, 0)
	return items, nil
}

func (u *ImportUsecase) ImportContacts(ctx context.Context, importID string) ([]contact.Contact, error) {
	items, err := u.imports.ListContacts(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("%w: list import contacts: %v", ErrInternal, err)
	}
	return items, nil
}

// DeleteImport removes the manifest and every contact it created, along with
// their logs and requirements.
func (u *ImportUsecase) DeleteImport(ctx context.Context, actor user.Principal, importID string) (int64, error) {
	n, err := u.imports.Delete(ctx, importID)
	if err != nil {
		if errors.Is(err, contact.ErrImportNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: delete import: %v", ErrInternal, err)
	}

	_ = u.deps.Cache.InvalidateContacts(ctx)
	u.deps.Events.Publish(EventContactsChanged, map[string]any{"import_id": importID, "deleted_contacts": n})
	u.deps.Recorder.Activity(actor, activity.ActionImportDeleted,
		fmt.Sprintf("Deleted import with %d contacts", n), "", "",
		map[string]any{"import_id": importID, "deleted_contacts": n})
	return n, nil
}
