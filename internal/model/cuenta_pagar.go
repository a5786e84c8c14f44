package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una cuenta por pagar. Derivados exclusivamente del saldo:
// pendiente ⟺ saldo = monto_total; parcial ⟺ 0 < saldo < monto_total;
// cancelado ⟺ saldo = 0.
const (
	CxPPendiente = "pendiente"
	CxPParcial   = "parcial"
	CxPCancelado = "cancelado"
)

// CuentaPagar es la deuda con el proveedor originada por una compra
// confirmada (una por compra). Saldo y Estado nunca se setean a mano:
// los recalcula el motor de CxP a partir de las aplicaciones de pago.
type CuentaPagar struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProveedorID uuid.UUID `gorm:"type:uuid;not null;index"`

	MontoTotal decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Saldo      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Estado     string          `gorm:"not null;default:'pendiente';index"`

	FechaEmision     time.Time `gorm:"not null"`
	FechaVencimiento time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Compra    *Compra    `gorm:"foreignKey:CompraID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (CuentaPagar) TableName() string { return "cuentas_pagar" }
