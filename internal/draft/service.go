package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmoura/orderdraft-backend/internal/erp"
	"github.com/dmoura/orderdraft-backend/pkg/db"
	"github.com/dmoura/orderdraft-backend/pkg/db/models"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	pkgerrors "github.com/dmoura/orderdraft-backend/pkg/errors"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/metrics"
	"github.com/dmoura/orderdraft-backend/pkg/pagination"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

// Service owns the draft lifecycle: create or hydrate, mutate lines, derive
// totals, and reconcile against the ERP on save. The ERP stays authoritative
// for persisted documents; the draft tables only hold work in progress.
type Service struct {
	repo    *Repository
	tx      txRunner
	erp     erpGateway
	metrics *metrics.DraftMetrics
	logger  *logger.Logger
}

// NewService builds a draft service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, gateway erpGateway, m *metrics.DraftMetrics, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("draft repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("erp gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{repo: repo, tx: tx, erp: gateway, metrics: m, logger: logg}, nil
}

// CreateInput captures the payload for opening a new draft. A document
// number means the document already exists upstream and its lines are
// hydrated from server truth.
type CreateInput struct {
	DocumentType   enums.DocumentType
	DocumentNumber *string
	CustomerID     *string
	Tags           []string
}

// View is the read shape handed to controllers: the record, its live lines,
// and the totals recomputed on this read.
type View struct {
	Record models.DraftRecord     `json:"record"`
	Lines  []models.DraftLineItem `json:"lines"`
	Totals Totals                 `json:"totals"`
}

func (s *Service) view(record models.DraftRecord, lines []models.DraftLineItem) *View {
	d := Draft{Record: record, Lines: lines}
	return &View{
		Record: record,
		Lines:  d.Live(),
		Totals: ComputeTotals(record, lines),
	}
}

// Create opens a draft for the caller. With a document number the existing
// lines are loaded from the ERP so editing starts from server truth.
func (s *Service) Create(ctx context.Context, scope types.RequestScope, input CreateInput) (*View, error) {
	if !input.DocumentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid document type")
	}

	record := models.DraftRecord{
		ID:                uuid.New(),
		CompanyID:         scope.CompanyID,
		BranchID:          scope.BranchID,
		UserID:            scope.UserID,
		DocumentType:      input.DocumentType,
		DocumentNumber:    input.DocumentNumber,
		CustomerID:        input.CustomerID,
		Status:            enums.DraftStatusEditing,
		OrderDiscountMode: enums.DiscountModePercentage,
		Tags:              pq.StringArray(input.Tags),
	}

	var lines []models.DraftLineItem
	if input.DocumentNumber != nil && *input.DocumentNumber != "" {
		items, err := s.erp.DocumentItems(ctx, scope, input.DocumentType, *input.DocumentNumber)
		if err != nil {
			return nil, err
		}
		lines = hydrateLines(record.ID, items)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, &record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create draft")
		}
		if len(lines) == 0 {
			return nil
		}
		if err := txRepo.ReplaceLines(ctx, record.ID, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist hydrated lines")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(s.logger.WithDraftID(ctx, record.ID.String()), "draft created")
	return s.view(record, lines), nil
}

func hydrateLines(draftID uuid.UUID, items []erp.DocumentItem) []models.DraftLineItem {
	lines := make([]models.DraftLineItem, 0, len(items))
	for i, item := range items {
		serverID := item.ServerID
		mode := item.DiscountMode
		if !mode.IsValid() {
			mode = enums.DiscountModePercentage
		}
		lines = append(lines, models.DraftLineItem{
			ID:              uuid.New(),
			DraftID:         draftID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountEnabled: item.DiscountEnabled,
			DiscountMode:    mode,
			DiscountPercent: item.DiscountPercent,
			DiscountAmount:  item.DiscountAmount,
			ServerID:        &serverID,
			Position:        i,
		})
	}
	return lines
}

// Get loads a draft with its derived totals.
func (s *Service) Get(ctx context.Context, scope types.RequestScope, id uuid.UUID) (*View, error) {
	record, lines, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return s.view(*record, lines), nil
}

// List pages through the caller's drafts.
func (s *Service) List(ctx context.Context, scope types.RequestScope, params pagination.Params) ([]models.DraftRecord, string, error) {
	records, next, err := s.repo.List(ctx, scope, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, "", typed
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list drafts")
	}
	return records, next, nil
}

// Discard deletes a draft without saving anything upstream.
func (s *Service) Discard(ctx context.Context, scope types.RequestScope, id uuid.UUID) error {
	err := s.repo.Delete(ctx, scope, id)
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "discard draft")
	}
	return nil
}

// AddOrEditItem applies one line mutation and persists the result.
func (s *Service) AddOrEditItem(ctx context.Context, scope types.RequestScope, id uuid.UUID, input LineInput, edit *EditRef) (*View, error) {
	return s.mutate(ctx, scope, id, func(d *Draft) error {
		_, err := d.AddOrEdit(input, edit)
		return err
	})
}

// SetQuantity applies a user-typed quantity to one line. Empty input is
// accepted as zero while the user is still typing.
func (s *Service) SetQuantity(ctx context.Context, scope types.RequestScope, id, lineID uuid.UUID, raw string) (*View, error) {
	return s.mutate(ctx, scope, id, func(d *Draft) error {
		return d.SetQuantity(lineID, raw)
	})
}

// RemoveItem drops a line, tombstoning it when the server knows about it.
func (s *Service) RemoveItem(ctx context.Context, scope types.RequestScope, id, lineID uuid.UUID) (*View, error) {
	return s.mutate(ctx, scope, id, func(d *Draft) error {
		return d.Remove(lineID)
	})
}

// OrderDiscountInput is the document-level discount payload.
type OrderDiscountInput struct {
	Enabled bool
	Mode    enums.DiscountMode
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// SetOrderDiscount replaces the document-level discount settings.
func (s *Service) SetOrderDiscount(ctx context.Context, scope types.RequestScope, id uuid.UUID, input OrderDiscountInput) (*View, error) {
	return s.mutate(ctx, scope, id, func(d *Draft) error {
		return d.SetOrderDiscount(input.Enabled, input.Mode, input.Percent, input.Amount)
	})
}

// mutate loads the draft, applies fn in memory, and persists the result
// atomically. Mutations are rejected while a save is in flight and flip a
// previously synced draft back to editing.
func (s *Service) mutate(ctx context.Context, scope types.RequestScope, id uuid.UUID, fn func(d *Draft) error) (*View, error) {
	record, lines, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if record.Status == enums.DraftStatusSubmitting {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft save in progress")
	}

	d := Draft{Record: *record, Lines: lines}
	if err := fn(&d); err != nil {
		return nil, err
	}
	d.Record.Status = enums.DraftStatusEditing

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateRecord(ctx, &d.Record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update draft record")
		}
		if err := txRepo.ReplaceLines(ctx, d.Record.ID, d.Lines); err != nil {
			// backstop for the in-memory duplicate check
			if db.IsUniqueViolation(err, "uniq_draft_live_product") {
				return pkgerrors.Wrap(pkgerrors.CodeDuplicateItem, err, "product already present in draft")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace draft lines")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(d.Record, d.Lines), nil
}

// Save reconciles the draft against the ERP: the add/edit/remove diff goes
// up in one batch, assigned server ids come back down, and tombstones are
// cleared. While the batch is in flight the draft sits in submitting and a
// second save is a no-op conflict. On upstream failure the draft is left
// exactly as it was.
func (s *Service) Save(ctx context.Context, scope types.RequestScope, id uuid.UUID) (*View, error) {
	record, lines, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if record.DocumentNumber == nil || *record.DocumentNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft has no document number to save against")
	}

	documentType := record.DocumentType.String()
	started := time.Now()

	ok, err := s.repo.TransitionStatus(ctx, scope, id, enums.DraftStatusEditing, enums.DraftStatusSubmitting)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark draft submitting")
	}
	if !ok {
		if record.Status == enums.DraftStatusSynced {
			// nothing changed since the last save
			return s.view(*record, lines), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft save already in progress")
	}

	d := Draft{Record: *record, Lines: lines}
	d.Record.Status = enums.DraftStatusSubmitting
	batch := BuildBatch(&d)

	if batch.Empty() {
		if _, err := s.repo.TransitionStatus(ctx, scope, id, enums.DraftStatusSubmitting, enums.DraftStatusSynced); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark draft synced")
		}
		d.Record.Status = enums.DraftStatusSynced
		return s.view(d.Record, d.Lines), nil
	}

	response, err := s.erp.SubmitItemBatch(ctx, scope, record.DocumentType, *record.DocumentNumber, batch)
	if err != nil {
		s.metrics.IncSaveFailure(documentType)
		if _, revertErr := s.repo.TransitionStatus(ctx, scope, id, enums.DraftStatusSubmitting, enums.DraftStatusEditing); revertErr != nil {
			s.logger.Error(ctx, "revert draft status after failed save", revertErr)
		}
		return nil, err
	}

	MergeAssigned(&d, response.Created)
	d.Record.Status = enums.DraftStatusSynced

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateRecord(ctx, &d.Record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update draft after save")
		}
		if err := txRepo.ReplaceLines(ctx, d.Record.ID, d.Lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace lines after save")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncSaveFailure(documentType)
		// the ERP applied the batch; local state lags until the next save
		s.logger.Error(s.logger.WithDraftID(ctx, id.String()), "batch accepted upstream but local persist failed", err)
		if _, revertErr := s.repo.TransitionStatus(ctx, scope, id, enums.DraftStatusSubmitting, enums.DraftStatusEditing); revertErr != nil {
			s.logger.Error(ctx, "revert draft status after failed persist", revertErr)
		}
		return nil, err
	}

	s.metrics.IncSaveSuccess(documentType)
	s.metrics.ObserveSaveDuration(documentType, time.Since(started))
	s.logger.Info(s.logger.WithDraftID(ctx, id.String()), "draft saved")
	return s.view(d.Record, d.Lines), nil
}

func (s *Service) load(ctx context.Context, scope types.RequestScope, id uuid.UUID) (*models.DraftRecord, []models.DraftLineItem, error) {
	record, err := s.repo.GetRecord(ctx, scope, id)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load draft")
	}
	if record == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	lines, err := s.repo.GetLines(ctx, id)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load draft lines")
	}
	return record, lines, nil
}
