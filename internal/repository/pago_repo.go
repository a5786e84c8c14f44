package repository

import (
	"context"

	"provex/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PagoRepository interface {
	Create(ctx context.Context, p *model.PagoProveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PagoProveedor, error)
	ListByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.PagoProveedor, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindTx(tx *gorm.DB, id uuid.UUID) (*model.PagoProveedor, error)

	// Aplicaciones
	FindAplicacionTx(tx *gorm.DB, pagoID, compraID uuid.UUID) (*model.PagoAplicacion, error)
	CreateAplicacionTx(tx *gorm.DB, a *model.PagoAplicacion) error
	SaveAplicacionTx(tx *gorm.DB, a *model.PagoAplicacion) error
	DeleteAplicacionTx(tx *gorm.DB, id uuid.UUID) error
	ListAplicacionesPorPago(ctx context.Context, pagoID uuid.UUID) ([]model.PagoAplicacion, error)

	// Running sums the application engine constrains against.
	SumAplicadoPorPagoTx(tx *gorm.DB, pagoID uuid.UUID) (decimal.Decimal, error)
	SumAplicadoPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (decimal.Decimal, error)
	CountAplicacionesPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) DB() *gorm.DB { return r.db }

func (r *pagoRepo) Create(ctx context.Context, p *model.PagoProveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PagoProveedor, error) {
	var p model.PagoProveedor
	err := r.db.WithContext(ctx).Preload("Aplicaciones").Preload("Proveedor").First(&p, id).Error
	return &p, err
}

func (r *pagoRepo) ListByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.PagoProveedor, error) {
	var pagos []model.PagoProveedor
	err := r.db.WithContext(ctx).
		Where("proveedor_id = ?", proveedorID).
		Preload("Aplicaciones").
		Order("fecha DESC").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PagoProveedor{}, id).Error
}

func (r *pagoRepo) FindTx(tx *gorm.DB, id uuid.UUID) (*model.PagoProveedor, error) {
	var p model.PagoProveedor
	err := tx.First(&p, id).Error
	return &p, err
}

func (r *pagoRepo) FindAplicacionTx(tx *gorm.DB, pagoID, compraID uuid.UUID) (*model.PagoAplicacion, error) {
	var a model.PagoAplicacion
	err := tx.Where("pago_id = ? AND compra_id = ?", pagoID, compraID).First(&a).Error
	return &a, err
}

func (r *pagoRepo) CreateAplicacionTx(tx *gorm.DB, a *model.PagoAplicacion) error {
	return tx.Create(a).Error
}

func (r *pagoRepo) SaveAplicacionTx(tx *gorm.DB, a *model.PagoAplicacion) error {
	return tx.Save(a).Error
}

func (r *pagoRepo) DeleteAplicacionTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.PagoAplicacion{}, id).Error
}

func (r *pagoRepo) ListAplicacionesPorPago(ctx context.Context, pagoID uuid.UUID) ([]model.PagoAplicacion, error) {
	var aplicaciones []model.PagoAplicacion
	err := r.db.WithContext(ctx).Where("pago_id = ?", pagoID).Find(&aplicaciones).Error
	return aplicaciones, err
}

func (r *pagoRepo) SumAplicadoPorPagoTx(tx *gorm.DB, pagoID uuid.UUID) (decimal.Decimal, error) {
	return SumDecimal(tx, "pago_aplicaciones", "monto_aplicado", "pago_id = ?", pagoID)
}

func (r *pagoRepo) SumAplicadoPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (decimal.Decimal, error) {
	return SumDecimal(tx, "pago_aplicaciones", "monto_aplicado", "compra_id = ?", compraID)
}

func (r *pagoRepo) CountAplicacionesPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.PagoAplicacion{}).Where("compra_id = ?", compraID).Count(&n).Error
	return n, err
}
