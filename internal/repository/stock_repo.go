package repository

import (
	"context"

	"provex/internal/dto"
	"provex/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	// Movimientos (append-only)
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error
	FindMovimiento(ctx context.Context, id uuid.UUID) (*model.MovimientoStock, error)
	FindMovimientoTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoStock, error)
	ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error)
	UpdateNotas(ctx context.Context, id uuid.UUID, notas string) error
	ExisteReversaTx(tx *gorm.DB, movimientoID uuid.UUID) (bool, error)
	ListMovimientosByRefTx(tx *gorm.DB, refTabla string, refID uuid.UUID) ([]model.MovimientoStock, error)

	// Balance row, locked FOR UPDATE NOWAIT before read-modify-write.
	FindBalanceForUpdateTx(tx *gorm.DB, productoID uuid.UUID, local, lugar, estado string) (*model.Stock, error)
	CreateBalanceTx(tx *gorm.DB, s *model.Stock) error
	UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, cantidad int) error
	FindBalance(ctx context.Context, productoID uuid.UUID, local, lugar, estado string) (*model.Stock, error)
	ListBalances(ctx context.Context, productoID uuid.UUID) ([]model.Stock, error)

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *stockRepo) FindMovimiento(ctx context.Context, id uuid.UUID) (*model.MovimientoStock, error) {
	var m model.MovimientoStock
	err := r.db.WithContext(ctx).Preload("Producto").First(&m, id).Error
	return &m, err
}

func (r *stockRepo) FindMovimientoTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoStock, error) {
	var m model.MovimientoStock
	err := tx.First(&m, id).Error
	return &m, err
}

func (r *stockRepo) ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	var movimientos []model.MovimientoStock
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})

	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.RefTabla != "" {
		q = q.Where("ref_tabla = ?", filter.RefTabla)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Producto").
		Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&movimientos).Error
	return movimientos, total, err
}

func (r *stockRepo) UpdateNotas(ctx context.Context, id uuid.UUID, notas string) error {
	return r.db.WithContext(ctx).Model(&model.MovimientoStock{}).
		Where("id = ?", id).Update("notas", notas).Error
}

// ExisteReversaTx checks whether a movement already has an inverse movement
// pointing back at it. Guard against double reversal.
func (r *stockRepo) ExisteReversaTx(tx *gorm.DB, movimientoID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.MovimientoStock{}).
		Where("ref_tabla = ? AND ref_id = ?", model.MovimientoStock{}.TableName(), movimientoID).
		Count(&n).Error
	return n > 0, err
}

func (r *stockRepo) ListMovimientosByRefTx(tx *gorm.DB, refTabla string, refID uuid.UUID) ([]model.MovimientoStock, error) {
	var movimientos []model.MovimientoStock
	err := tx.Where("ref_tabla = ? AND ref_id = ?", refTabla, refID).
		Order("created_at ASC").Find(&movimientos).Error
	return movimientos, err
}

func (r *stockRepo) FindBalanceForUpdateTx(tx *gorm.DB, productoID uuid.UUID, local, lugar, estado string) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		Where("producto_id = ? AND local = ? AND lugar = ? AND estado_mercaderia = ?",
			productoID, local, lugar, estado).
		First(&s).Error
	return &s, err
}

func (r *stockRepo) CreateBalanceTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Create(s).Error
}

func (r *stockRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return tx.Model(&model.Stock{}).Where("id = ?", id).Update("cantidad", cantidad).Error
}

func (r *stockRepo) FindBalance(ctx context.Context, productoID uuid.UUID, local, lugar, estado string) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Where("producto_id = ? AND local = ? AND lugar = ? AND estado_mercaderia = ?",
			productoID, local, lugar, estado).
		First(&s).Error
	return &s, err
}

func (r *stockRepo) ListBalances(ctx context.Context, productoID uuid.UUID) ([]model.Stock, error) {
	var balances []model.Stock
	err := r.db.WithContext(ctx).Where("producto_id = ?", productoID).Find(&balances).Error
	return balances, err
}
