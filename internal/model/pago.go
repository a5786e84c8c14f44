package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PagoProveedor is a supplier payment. Its amount is distributed across one
// or more cuentas por pagar via PagoAplicacion rows.
type PagoProveedor struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoTotal  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Fecha       time.Time       `gorm:"not null"`
	Medio       string          `gorm:"not null;default:'transferencia'"`
	Notas       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Proveedor    *Proveedor       `gorm:"foreignKey:ProveedorID"`
	Aplicaciones []PagoAplicacion `gorm:"foreignKey:PagoID"`
}

func (PagoProveedor) TableName() string { return "pagos_proveedor" }

// PagoAplicacion links a payment to one purchase's payable.
// (PagoID, CompraID) is unique: re-applying the same payment to the same
// purchase is an update, never a second row.
type PagoAplicacion struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PagoID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_pago_compra;index"`
	CompraID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_pago_compra;index"`
	MontoAplicado decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Pago   *PagoProveedor `gorm:"foreignKey:PagoID"`
	Compra *Compra        `gorm:"foreignKey:CompraID"`
}

func (PagoAplicacion) TableName() string { return "pago_aplicaciones" }
