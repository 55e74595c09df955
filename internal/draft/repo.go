package draft

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmoura/orderdraft-backend/pkg/db/models"
	"github.com/dmoura/orderdraft-backend/pkg/enums"
	"github.com/dmoura/orderdraft-backend/pkg/pagination"
	"github.com/dmoura/orderdraft-backend/pkg/types"
)

// Repository encapsulates draft persistence. Every read and write is scoped
// to the caller's company and branch; a draft is never visible outside the
// tenant that created it.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) scoped(ctx context.Context, scope types.RequestScope) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("company_id = ? AND branch_id = ?", scope.CompanyID, scope.BranchID)
}

// Create inserts the draft record.
func (r *Repository) Create(ctx context.Context, record *models.DraftRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetRecord loads one draft record within the caller's scope.
func (r *Repository) GetRecord(ctx context.Context, scope types.RequestScope, id uuid.UUID) (*models.DraftRecord, error) {
	var record models.DraftRecord
	err := r.scoped(ctx, scope).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetLines loads every line of a draft, tombstones included, in display order.
func (r *Repository) GetLines(ctx context.Context, draftID uuid.UUID) ([]models.DraftLineItem, error) {
	var lines []models.DraftLineItem
	err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("position ASC, created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// List returns a page of the caller's drafts, newest first, keyed by a
// created_at/id cursor.
func (r *Repository) List(ctx context.Context, scope types.RequestScope, params pagination.Params) ([]models.DraftRecord, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.scoped(ctx, scope).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var records []models.DraftRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return records, next, nil
}

// UpdateRecord saves the draft record in full.
func (r *Repository) UpdateRecord(ctx context.Context, record *models.DraftRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// ReplaceLines rewrites the full line set of a draft. Used after mutations
// and after a successful save merge, inside the caller's transaction.
func (r *Repository) ReplaceLines(ctx context.Context, draftID uuid.UUID, lines []models.DraftLineItem) error {
	if err := r.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Delete(&models.DraftLineItem{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].DraftID = draftID
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// Delete discards a draft and its lines within the caller's scope. The
// scoped record delete goes first so a foreign tenant's id never touches
// the line rows; both deletes commit together or not at all.
func (r *Repository) Delete(ctx context.Context, scope types.RequestScope, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("company_id = ? AND branch_id = ?", scope.CompanyID, scope.BranchID).
			Where("id = ?", id).
			Delete(&models.DraftRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("draft_id = ?", id).Delete(&models.DraftLineItem{}).Error
	})
}

// TransitionStatus flips a draft from one status to another atomically.
// Returns false when the draft was not in the expected status, which is how
// a re-entrant save is detected.
func (r *Repository) TransitionStatus(ctx context.Context, scope types.RequestScope, id uuid.UUID, from, to enums.DraftStatus) (bool, error) {
	result := r.scoped(ctx, scope).
		Model(&models.DraftRecord{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
