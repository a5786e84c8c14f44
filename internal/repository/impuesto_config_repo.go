package repository

import (
	"context"

	"provex/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImpuestoConfigRepository interface {
	Create(ctx context.Context, c *model.ImpuestoConfig) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ImpuestoConfig, error)
	// FindActivoByCodigo resolves a catalog entry by its normalized code.
	// Inactive entries do not resolve.
	FindActivoByCodigo(ctx context.Context, codigo string) (*model.ImpuestoConfig, error)
	FindActivoByCodigoTx(tx *gorm.DB, codigo string) (*model.ImpuestoConfig, error)
	List(ctx context.Context) ([]model.ImpuestoConfig, error)
	Update(ctx context.Context, c *model.ImpuestoConfig) error
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type impuestoConfigRepo struct{ db *gorm.DB }

func NewImpuestoConfigRepository(db *gorm.DB) ImpuestoConfigRepository {
	return &impuestoConfigRepo{db: db}
}

func (r *impuestoConfigRepo) Create(ctx context.Context, c *model.ImpuestoConfig) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *impuestoConfigRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ImpuestoConfig, error) {
	var c model.ImpuestoConfig
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *impuestoConfigRepo) FindActivoByCodigo(ctx context.Context, codigo string) (*model.ImpuestoConfig, error) {
	var c model.ImpuestoConfig
	err := r.db.WithContext(ctx).Where("codigo = ? AND activo = true", codigo).First(&c).Error
	return &c, err
}

func (r *impuestoConfigRepo) FindActivoByCodigoTx(tx *gorm.DB, codigo string) (*model.ImpuestoConfig, error) {
	var c model.ImpuestoConfig
	err := tx.Where("codigo = ? AND activo = true", codigo).First(&c).Error
	return &c, err
}

func (r *impuestoConfigRepo) List(ctx context.Context) ([]model.ImpuestoConfig, error) {
	var configs []model.ImpuestoConfig
	err := r.db.WithContext(ctx).Order("codigo ASC").Find(&configs).Error
	return configs, err
}

func (r *impuestoConfigRepo) Update(ctx context.Context, c *model.ImpuestoConfig) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *impuestoConfigRepo) Desactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ImpuestoConfig{}).Where("id = ?", id).Update("activo", false).Error
}
