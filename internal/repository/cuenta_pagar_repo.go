package repository

import (
	"context"

	"provex/internal/dto"
	"provex/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CuentaPagarRepository interface {
	Create(ctx context.Context, c *model.CuentaPagar) error
	CreateTx(tx *gorm.DB, c *model.CuentaPagar) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaPagar, error)
	FindByCompraID(ctx context.Context, compraID uuid.UUID) (*model.CuentaPagar, error)
	List(ctx context.Context, filter dto.CuentaPagarFilter) ([]model.CuentaPagar, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCompraIDTx(tx *gorm.DB, compraID uuid.UUID) error

	// FindForUpdateTx locks the payable row before the read-modify-write of
	// saldo/estado. Taken before any aplicacion rows (parent first).
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CuentaPagar, error)
	FindByCompraForUpdateTx(tx *gorm.DB, compraID uuid.UUID) (*model.CuentaPagar, error)
	UpdateCamposTx(tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error

	DB() *gorm.DB
}

type cuentaPagarRepo struct{ db *gorm.DB }

func NewCuentaPagarRepository(db *gorm.DB) CuentaPagarRepository { return &cuentaPagarRepo{db: db} }

func (r *cuentaPagarRepo) DB() *gorm.DB { return r.db }

func (r *cuentaPagarRepo) Create(ctx context.Context, c *model.CuentaPagar) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cuentaPagarRepo) CreateTx(tx *gorm.DB, c *model.CuentaPagar) error {
	return tx.Create(c).Error
}

func (r *cuentaPagarRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaPagar, error) {
	var c model.CuentaPagar
	err := r.db.WithContext(ctx).Preload("Proveedor").Preload("Compra").First(&c, id).Error
	return &c, err
}

func (r *cuentaPagarRepo) FindByCompraID(ctx context.Context, compraID uuid.UUID) (*model.CuentaPagar, error) {
	var c model.CuentaPagar
	err := r.db.WithContext(ctx).Where("compra_id = ?", compraID).First(&c).Error
	return &c, err
}

func (r *cuentaPagarRepo) List(ctx context.Context, filter dto.CuentaPagarFilter) ([]model.CuentaPagar, int64, error) {
	var cuentas []model.CuentaPagar
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CuentaPagar{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	if filter.VencidasAl != "" {
		q = q.Where("fecha_vencimiento <= ? AND estado <> ?", filter.VencidasAl, model.CxPCancelado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Proveedor").
		Order("fecha_vencimiento ASC").
		Limit(filter.Limit).Offset(offset).
		Find(&cuentas).Error
	return cuentas, total, err
}

func (r *cuentaPagarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CuentaPagar{}, id).Error
}

func (r *cuentaPagarRepo) DeleteByCompraIDTx(tx *gorm.DB, compraID uuid.UUID) error {
	return tx.Where("compra_id = ?", compraID).Delete(&model.CuentaPagar{}).Error
}

func (r *cuentaPagarRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CuentaPagar, error) {
	var c model.CuentaPagar
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		First(&c, id).Error
	return &c, err
}

func (r *cuentaPagarRepo) FindByCompraForUpdateTx(tx *gorm.DB, compraID uuid.UUID) (*model.CuentaPagar, error) {
	var c model.CuentaPagar
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		Where("compra_id = ?", compraID).First(&c).Error
	return &c, err
}

func (r *cuentaPagarRepo) UpdateCamposTx(tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error {
	return tx.Model(&model.CuentaPagar{}).Where("id = ?", id).Updates(campos).Error
}
