package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una compra. Solo una compra en borrador
// admite altas/bajas/modificaciones de lineas e impuestos.
const (
	CompraBorrador   = "borrador"
	CompraConfirmada = "confirmada"
	CompraAnulada    = "anulada"
)

// Compra is the purchase header. The four aggregate amounts are derived from
// the lines and tax lines and recomputed on every mutation while in borrador.
type Compra struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Canal       string    `gorm:"not null;default:'manual'"`
	TipoComp    *string   `gorm:"column:tipo_comprobante"` // FA/FB/FC/ND/NC, free-form
	PuntoVenta  *int
	NumeroComp  *int      `gorm:"column:numero_comprobante"`
	ProveedorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Estado      string    `gorm:"not null;default:'borrador';index"`
	Moneda      string    `gorm:"not null;default:'ARS'"`

	SubtotalNeto      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	IVATotal          decimal.Decimal `gorm:"column:iva_total;type:decimal(14,2);not null;default:0"`
	PercepcionesTotal decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	RetencionesTotal  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Notas     *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Proveedor *Proveedor       `gorm:"foreignKey:ProveedorID"`
	Detalles  []CompraDetalle  `gorm:"foreignKey:CompraID"`
	Impuestos []CompraImpuesto `gorm:"foreignKey:CompraID"`
}

func (Compra) TableName() string { return "compras" }

// Editable reports whether lines and tax lines may still be mutated.
func (c *Compra) Editable() bool { return c.Estado == CompraBorrador }

// DocumentoCompleto checks the punto de venta / numero invariant:
// both present or both absent.
func (c *Compra) DocumentoCompleto() bool {
	return (c.PuntoVenta == nil) == (c.NumeroComp == nil)
}

// CompraDetalle is one purchase line. TotalLinea is derived, never client-set.
// Lines without a product reference must carry a free-text Descripcion.
type CompraDetalle struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductoID  *uuid.UUID `gorm:"type:uuid;index"`
	Descripcion *string

	Cantidad            int             `gorm:"not null"`
	CostoUnitNeto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AlicuotaIVA         decimal.Decimal `gorm:"column:alicuota_iva;type:decimal(5,2);not null;default:21"` // percent
	IncluyeIVA          bool            `gorm:"column:incluye_iva;not null;default:false"`
	DescuentoPorcentaje decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	OtrosImpuestos      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalLinea          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Compra   *Compra   `gorm:"foreignKey:CompraID"`
	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (CompraDetalle) TableName() string { return "compra_detalles" }

// Tipos de linea de impuesto a nivel comprobante.
const (
	ImpuestoIVA        = "IVA"
	ImpuestoPercepcion = "PERCEPCION"
	ImpuestoRetencion  = "RETENCION"
	ImpuestoOtro       = "OTRO"
)

// TipoImpuestoValido reports membership in the enumerated tax-line set.
func TipoImpuestoValido(tipo string) bool {
	switch tipo {
	case ImpuestoIVA, ImpuestoPercepcion, ImpuestoRetencion, ImpuestoOtro:
		return true
	}
	return false
}

// CompraImpuesto is a header-level tax line (percepciones, retenciones, IVA
// ajustes). Alicuota is a fraction in [0,1], unlike the per-line percent.
type CompraImpuesto struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ImpuestoConfigID *uuid.UUID      `gorm:"type:uuid"`
	Tipo             string          `gorm:"not null"`
	Base             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Alicuota         decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	Monto            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Compra *Compra         `gorm:"foreignKey:CompraID"`
	Config *ImpuestoConfig `gorm:"foreignKey:ImpuestoConfigID"`
}

func (CompraImpuesto) TableName() string { return "compra_impuestos" }
