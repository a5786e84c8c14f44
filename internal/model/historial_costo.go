package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialCosto registra cada cambio de costo de un producto.
// Los registros son inmutables — nunca se eliminan ni modifican.
type HistorialCosto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProveedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	CompraID     *uuid.UUID      `gorm:"type:uuid;index"`
	CostoAntes   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CostoDespues decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Motivo       string          `gorm:"not null;default:'compra_confirmada'"` // compra_confirmada | manual
	CreatedAt    time.Time

	Producto  Producto   `gorm:"foreignKey:ProductoID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (HistorialCosto) TableName() string { return "historial_costos" }
