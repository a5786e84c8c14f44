package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoBarras  string          `json:"codigo_barras"  validate:"required,min=8,max=18"`
	Nombre        string          `json:"nombre"         validate:"required,min=2,max=120"`
	Descripcion   *string         `json:"descripcion"`
	CategoriaID   *string         `json:"categoria_id"   validate:"omitempty,uuid"`
	CostoUnitNeto decimal.Decimal `json:"costo_unit_neto"`
	PrecioVenta   decimal.Decimal `json:"precio_venta"`
	AlicuotaIVA   *decimal.Decimal `json:"alicuota_iva"`
	StockMinimo   int             `json:"stock_minimo"   validate:"min=0"`
	UnidadMedida  string          `json:"unidad_medida"`
	ProveedorID   *string         `json:"proveedor_id"   validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre        *string          `json:"nombre" validate:"omitempty,min=2,max=120"`
	Descripcion   *string          `json:"descripcion"`
	CategoriaID   *string          `json:"categoria_id" validate:"omitempty,uuid"`
	CostoUnitNeto *decimal.Decimal `json:"costo_unit_neto"`
	PrecioVenta   *decimal.Decimal `json:"precio_venta"`
	AlicuotaIVA   *decimal.Decimal `json:"alicuota_iva"`
	StockMinimo   *int             `json:"stock_minimo" validate:"omitempty,min=0"`
	UnidadMedida  *string          `json:"unidad_medida"`
	ProveedorID   *string          `json:"proveedor_id" validate:"omitempty,uuid"`
}

type CrearComponenteRequest struct {
	ComponenteID string `json:"componente_id" validate:"required,uuid"`
	Cantidad     int    `json:"cantidad"      validate:"required,min=1"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Barcode     string `form:"barcode"`
	Nombre      string `form:"nombre"`
	CategoriaID string `form:"categoria_id"`
	ProveedorID string `form:"proveedor_id"`
	Activo      string `form:"activo"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID            string          `json:"id"`
	CodigoBarras  string          `json:"codigo_barras"`
	Nombre        string          `json:"nombre"`
	Descripcion   *string         `json:"descripcion"`
	CategoriaID   *string         `json:"categoria_id"`
	CostoUnitNeto decimal.Decimal `json:"costo_unit_neto"`
	PrecioVenta   decimal.Decimal `json:"precio_venta"`
	MargenPct     decimal.Decimal `json:"margen_pct"`
	AlicuotaIVA   decimal.Decimal `json:"alicuota_iva"`
	StockMinimo   int             `json:"stock_minimo"`
	UnidadMedida  string          `json:"unidad_medida"`
	EsCombo       bool            `json:"es_combo"`
	Activo        bool            `json:"activo"`
	ProveedorID   *string         `json:"proveedor_id"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type ComponenteResponse struct {
	ID           string `json:"id"`
	ComponenteID string `json:"componente_id"`
	Nombre       string `json:"nombre"`
	Cantidad     int    `json:"cantidad"`
}

type HistorialCostoResponse struct {
	ID           string          `json:"id"`
	CompraID     *string         `json:"compra_id"`
	CostoAntes   decimal.Decimal `json:"costo_antes"`
	CostoDespues decimal.Decimal `json:"costo_despues"`
	Motivo       string          `json:"motivo"`
	CreatedAt    string          `json:"created_at"`
}

// ConsultaPrecioResponse is the unauthenticated price-check payload,
// cached briefly in redis.
type ConsultaPrecioResponse struct {
	Nombre       string          `json:"nombre"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	UnidadMedida string          `json:"unidad_medida"`
}
