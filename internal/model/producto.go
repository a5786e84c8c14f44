package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto represents a catalog item. CostoUnitNeto is the last confirmed
// purchase cost; it is updated at purchase confirmation together with a
// HistorialCosto entry.
type Producto struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoBarras  string    `gorm:"uniqueIndex;not null"`
	Nombre        string    `gorm:"index;not null"`
	Descripcion   *string
	CategoriaID   *uuid.UUID      `gorm:"type:uuid;index"`
	CostoUnitNeto decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	PrecioVenta   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	// MargenPct is derived from (PrecioVenta - CostoUnitNeto) / CostoUnitNeto * 100
	MargenPct    decimal.Decimal `gorm:"type:decimal(7,2)"`
	AlicuotaIVA  decimal.Decimal `gorm:"column:alicuota_iva;type:decimal(5,2);not null;default:21"`
	StockMinimo  int             `gorm:"not null;default:5"`
	UnidadMedida string          `gorm:"not null;default:'unidad'"`
	EsCombo      bool            `gorm:"not null;default:false"`
	ProveedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (Producto) TableName() string { return "productos" }

// ComboComponente links a combo product to one of its component products.
type ComboComponente struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComboID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_combo_componente"`
	ComponenteID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_combo_componente"`
	Cantidad     int       `gorm:"not null;default:1"`
	CreatedAt    time.Time

	Combo      *Producto `gorm:"foreignKey:ComboID"`
	Componente *Producto `gorm:"foreignKey:ComponenteID"`
}

func (ComboComponente) TableName() string { return "combo_componentes" }
