package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. El signo de Cantidad queda restringido por
// el tipo: entradas siempre positivas, salidas siempre negativas, ajustes y
// transferencias libres (pero nunca cero).
const (
	MovCompra              = "COMPRA"
	MovVenta               = "VENTA"
	MovDevolucionProveedor = "DEVOLUCION_PROVEEDOR"
	MovDevolucionCliente   = "DEVOLUCION_CLIENTE"
	MovAjuste              = "AJUSTE"
	MovTransferencia       = "TRANSFERENCIA"
	MovRecepcionOC         = "RECEPCION_OC"
)

// SignoMovimiento returns the required sign for a movement type:
// +1 entrada, -1 salida, 0 unconstrained. Unknown types return 0 along
// with ok=false so callers can reject them.
func SignoMovimiento(tipo string) (signo int, ok bool) {
	switch tipo {
	case MovCompra, MovDevolucionCliente, MovRecepcionOC:
		return 1, true
	case MovVenta, MovDevolucionProveedor:
		return -1, true
	case MovAjuste, MovTransferencia:
		return 0, true
	}
	return 0, false
}

// MovimientoStock es una entrada inmutable del libro de stock.
// Una reversa es siempre un movimiento nuevo (AJUSTE) que referencia al
// original via (RefTabla='movimientos_stock', RefID); la cantidad de un
// movimiento ya registrado no se edita nunca, solo sus notas.
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Local      string    `gorm:"not null;default:''"`
	Lugar      string    `gorm:"not null;default:''"`
	EstadoMerc string    `gorm:"column:estado_mercaderia;not null;default:''"`

	Tipo          string           `gorm:"not null;index"`
	Cantidad      int              `gorm:"not null"` // signed, never zero
	CostoUnitNeto *decimal.Decimal `gorm:"type:decimal(14,2)"`

	RefTabla *string    `gorm:"index:idx_mov_ref"`
	RefID    *uuid.UUID `gorm:"type:uuid;index:idx_mov_ref"`
	Notas    *string

	CreatedAt time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }

// Stock is the derived on-hand balance per (producto, local, lugar, estado).
// Updated only under a row lock inside the same transaction as the movement
// that changes it; Cantidad never goes below zero.
type Stock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_ubicacion"`
	Local      string    `gorm:"not null;default:'';uniqueIndex:idx_stock_ubicacion"`
	Lugar      string    `gorm:"not null;default:'';uniqueIndex:idx_stock_ubicacion"`
	EstadoMerc string    `gorm:"column:estado_mercaderia;not null;default:'';uniqueIndex:idx_stock_ubicacion"`
	Cantidad   int       `gorm:"not null;default:0"`
	UpdatedAt  time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Stock) TableName() string { return "stock" }
