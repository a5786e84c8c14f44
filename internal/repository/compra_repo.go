package repository

import (
	"context"

	"provex/internal/dto"
	"provex/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompraRepository defines the data access contract for purchases and their
// children. Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via stubs.
//
// Methods with a Tx suffix run inside a caller-owned transaction; the header
// lock methods use FOR UPDATE NOWAIT so a contended aggregate surfaces as a
// lock error instead of queueing writers.
type CompraRepository interface {
	Create(ctx context.Context, c *model.Compra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error)
	UpdateCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// Header lock — always taken before touching children (lock ordering:
	// parent aggregate first, then children).
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error)
	UpdateCamposTx(tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error

	// Detalles
	FindDetalleTx(tx *gorm.DB, id uuid.UUID) (*model.CompraDetalle, error)
	ListDetallesTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraDetalle, error)
	CreateDetalleTx(tx *gorm.DB, d *model.CompraDetalle) error
	SaveDetalleTx(tx *gorm.DB, d *model.CompraDetalle) error
	DeleteDetalleTx(tx *gorm.DB, id uuid.UUID) error
	DeleteDetallesByCompraTx(tx *gorm.DB, compraID uuid.UUID) error

	// Impuestos
	FindImpuestoTx(tx *gorm.DB, id uuid.UUID) (*model.CompraImpuesto, error)
	ListImpuestosTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraImpuesto, error)
	CreateImpuestoTx(tx *gorm.DB, i *model.CompraImpuesto) error
	SaveImpuestoTx(tx *gorm.DB, i *model.CompraImpuesto) error
	DeleteImpuestoTx(tx *gorm.DB, id uuid.UUID) error
	DeleteImpuestosByCompraTx(tx *gorm.DB, compraID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) Create(ctx context.Context, c *model.Compra) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).
		Preload("Proveedor").
		Preload("Detalles.Producto").
		Preload("Impuestos").
		First(&c, id).Error
	return &c, err
}

func (r *compraRepo) List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error) {
	var compras []model.Compra
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Compra{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	if filter.Desde != "" {
		q = q.Where("DATE(created_at) >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("DATE(created_at) <= ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Proveedor").
		Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&compras).Error
	return compras, total, err
}

func (r *compraRepo) UpdateCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Compra{}).Where("id = ?", id).Updates(campos).Error
}

func (r *compraRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Compra{}, id).Error
}

func (r *compraRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Compra{}, id).Error
}

func (r *compraRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		First(&c, id).Error
	return &c, err
}

func (r *compraRepo) UpdateCamposTx(tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error {
	return tx.Model(&model.Compra{}).Where("id = ?", id).Updates(campos).Error
}

func (r *compraRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Compra{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *compraRepo) FindDetalleTx(tx *gorm.DB, id uuid.UUID) (*model.CompraDetalle, error) {
	var d model.CompraDetalle
	err := tx.First(&d, id).Error
	return &d, err
}

func (r *compraRepo) ListDetallesTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraDetalle, error) {
	var detalles []model.CompraDetalle
	err := tx.Where("compra_id = ?", compraID).Order("created_at ASC").Find(&detalles).Error
	return detalles, err
}

func (r *compraRepo) CreateDetalleTx(tx *gorm.DB, d *model.CompraDetalle) error {
	return tx.Create(d).Error
}

func (r *compraRepo) SaveDetalleTx(tx *gorm.DB, d *model.CompraDetalle) error {
	return tx.Save(d).Error
}

func (r *compraRepo) DeleteDetalleTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.CompraDetalle{}, id).Error
}

func (r *compraRepo) DeleteDetallesByCompraTx(tx *gorm.DB, compraID uuid.UUID) error {
	return tx.Where("compra_id = ?", compraID).Delete(&model.CompraDetalle{}).Error
}

func (r *compraRepo) FindImpuestoTx(tx *gorm.DB, id uuid.UUID) (*model.CompraImpuesto, error) {
	var i model.CompraImpuesto
	err := tx.First(&i, id).Error
	return &i, err
}

func (r *compraRepo) ListImpuestosTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraImpuesto, error) {
	var impuestos []model.CompraImpuesto
	err := tx.Where("compra_id = ?", compraID).Order("created_at ASC").Find(&impuestos).Error
	return impuestos, err
}

func (r *compraRepo) CreateImpuestoTx(tx *gorm.DB, i *model.CompraImpuesto) error {
	return tx.Create(i).Error
}

func (r *compraRepo) SaveImpuestoTx(tx *gorm.DB, i *model.CompraImpuesto) error {
	return tx.Save(i).Error
}

func (r *compraRepo) DeleteImpuestoTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.CompraImpuesto{}, id).Error
}

func (r *compraRepo) DeleteImpuestosByCompraTx(tx *gorm.DB, compraID uuid.UUID) error {
	return tx.Where("compra_id = ?", compraID).Delete(&model.CompraImpuesto{}).Error
}

// SumDecimal is a small helper for aggregate queries that must come back as
// exact decimals, never floats.
func SumDecimal(tx *gorm.DB, table, column, where string, args ...interface{}) (decimal.Decimal, error) {
	var s decimal.NullDecimal
	err := tx.Table(table).Select("SUM("+column+")").Where(where, args...).Scan(&s).Error
	if err != nil || !s.Valid {
		return decimal.Zero, err
	}
	return s.Decimal, nil
}
