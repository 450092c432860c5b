package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

var activeReturnStatuses = []enums.ReturnStatus{
	enums.ReturnStatusPending,
	enums.ReturnStatusApproved,
	enums.ReturnStatusInTransit,
	enums.ReturnStatusReceived,
	enums.ReturnStatusInspecting,
}

// Repository persists return and exchange requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the request together with its line items.
func (r *Repository) Create(ctx context.Context, request *models.ReturnExchange) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.Status == "" {
		request.Status = enums.ReturnStatusPending
	}
	for i := range request.Items {
		if request.Items[i].ID == uuid.Nil {
			request.Items[i].ID = uuid.New()
		}
		request.Items[i].ReturnID = request.ID
	}
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create return request")
	}
	return nil
}

// FindByID loads a request with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReturnExchange, error) {
	var request models.ReturnExchange
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return request not found").
				WithDetails(map[string]any{"return_id": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find return request")
	}
	return &request, nil
}

// HasActiveForOrder reports whether the order already has a return that
// is not yet settled.
func (r *Repository) HasActiveForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReturnExchange{}).
		Where("order_id = ? AND status IN ?", orderID, activeReturnStatuses).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active returns")
	}
	return count > 0, nil
}

// List returns requests newest first.
func (r *Repository) List(ctx context.Context) ([]models.ReturnExchange, error) {
	var requests []models.ReturnExchange
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list return requests")
	}
	return requests, nil
}

// ListByStatus returns requests in the given status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status enums.ReturnStatus) ([]models.ReturnExchange, error) {
	var requests []models.ReturnExchange
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list returns by status")
	}
	return requests, nil
}

// ListPending returns requests awaiting a first decision, oldest first.
func (r *Repository) ListPending(ctx context.Context) ([]models.ReturnExchange, error) {
	var requests []models.ReturnExchange
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", enums.ReturnStatusPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending returns")
	}
	return requests, nil
}

// Transition moves the request from one status to another with a
// guarded update. It reports whether this caller performed the move.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from, to enums.ReturnStatus, stamp map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for key, value := range stamp {
		updates[key] = value
	}
	result := r.db.WithContext(ctx).
		Model(&models.ReturnExchange{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "transition return request")
	}
	return result.RowsAffected == 1, nil
}
