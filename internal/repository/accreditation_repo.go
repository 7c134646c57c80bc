package repository

import (
	"context"

	"accreditation-backend/internal/model"

	"gorm.io/gorm"
)

// ListFilter carries the optional restrictions applied to a paginated
// listing. Zero values mean "no filter".
type ListFilter struct {
	Type   string
	Status string
	Search string
	Page   int
	Limit  int
}

// AccreditationRepository defines the interface for data access of
// Accreditation entities
type AccreditationRepository interface {
	Create(ctx context.Context, acc *model.Accreditation) error
	GetByID(ctx context.Context, id uint) (*model.Accreditation, error)
	List(ctx context.Context, filter ListFilter) ([]model.Accreditation, int64, error)
	ListAll(ctx context.Context) ([]model.Accreditation, error)
	ListByType(ctx context.Context, accType string) ([]model.Accreditation, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	DeleteByType(ctx context.Context, accType string) (int64, error)
}

type accreditationRepository struct {
	db *gorm.DB
}

// NewAccreditationRepository returns a new instance of AccreditationRepository
func NewAccreditationRepository(db *gorm.DB) AccreditationRepository {
	return &accreditationRepository{db: db}
}

func (r *accreditationRepository) Create(ctx context.Context, acc *model.Accreditation) error {
	return r.db.WithContext(ctx).Create(acc).Error
}

func (r *accreditationRepository) GetByID(ctx context.Context, id uint) (*model.Accreditation, error) {
	var acc model.Accreditation
	if err := r.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// applyFilter narrows a query to the filter's type/status/search terms.
// Search is a case-insensitive substring match over name, email and phone.
func applyFilter(q *gorm.DB, filter ListFilter) *gorm.DB {
	if model.ValidType(filter.Type) {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern)
	}
	return q
}

func (r *accreditationRepository) List(ctx context.Context, filter ListFilter) ([]model.Accreditation, int64, error) {
	var accs []model.Accreditation
	var total int64

	base := applyFilter(r.db.WithContext(ctx).Model(&model.Accreditation{}), filter)

	// Count total records matching the filter
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	// Fetch paginated data, most recent first
	if err := base.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&accs).Error; err != nil {
		return nil, 0, err
	}

	return accs, total, nil
}

func (r *accreditationRepository) ListAll(ctx context.Context) ([]model.Accreditation, error) {
	var accs []model.Accreditation
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&accs).Error; err != nil {
		return nil, err
	}
	return accs, nil
}

func (r *accreditationRepository) ListByType(ctx context.Context, accType string) ([]model.Accreditation, error) {
	var accs []model.Accreditation
	if err := r.db.WithContext(ctx).Where("type = ?", accType).Find(&accs).Error; err != nil {
		return nil, err
	}
	return accs, nil
}

func (r *accreditationRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Accreditation{}).
		Where("id = ?", id).Updates(fields).Error
}

func (r *accreditationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Accreditation{}).Error
}

func (r *accreditationRepository) DeleteByType(ctx context.Context, accType string) (int64, error) {
	res := r.db.WithContext(ctx).Where("type = ?", accType).Delete(&model.Accreditation{})
	return res.RowsAffected, res.Error
}
