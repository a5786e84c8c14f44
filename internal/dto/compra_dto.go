package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearCompraRequest struct {
	ProveedorID string  `json:"proveedor_id" validate:"required,uuid"`
	Canal       string  `json:"canal"`
	TipoComp    *string `json:"tipo_comprobante"`
	PuntoVenta  *int    `json:"punto_venta"      validate:"omitempty,min=1"`
	NumeroComp  *int    `json:"numero_comprobante" validate:"omitempty,min=1"`
	Moneda      string  `json:"moneda"`
	Notas       *string `json:"notas"`
}

type ActualizarCompraRequest struct {
	TipoComp   *string `json:"tipo_comprobante"`
	PuntoVenta *int    `json:"punto_venta"        validate:"omitempty,min=1"`
	NumeroComp *int    `json:"numero_comprobante" validate:"omitempty,min=1"`
	Moneda     *string `json:"moneda"`
	Notas      *string `json:"notas"`
}

type CrearDetalleRequest struct {
	ProductoID          *string          `json:"producto_id" validate:"omitempty,uuid"`
	Descripcion         *string          `json:"descripcion"`
	Cantidad            int              `json:"cantidad"    validate:"required,min=1"`
	CostoUnitNeto       decimal.Decimal  `json:"costo_unit_neto" validate:"gte=0"`
	AlicuotaIVA         *decimal.Decimal `json:"alicuota_iva"`
	IncluyeIVA          bool             `json:"incluye_iva"`
	DescuentoPorcentaje decimal.Decimal  `json:"descuento_porcentaje"`
	OtrosImpuestos      decimal.Decimal  `json:"otros_impuestos"`
}

type ActualizarDetalleRequest struct {
	Descripcion         *string          `json:"descripcion"`
	Cantidad            *int             `json:"cantidad" validate:"omitempty,min=1"`
	CostoUnitNeto       *decimal.Decimal `json:"costo_unit_neto"`
	AlicuotaIVA         *decimal.Decimal `json:"alicuota_iva"`
	IncluyeIVA          *bool            `json:"incluye_iva"`
	DescuentoPorcentaje *decimal.Decimal `json:"descuento_porcentaje"`
	OtrosImpuestos      *decimal.Decimal `json:"otros_impuestos"`
}

type CrearImpuestoRequest struct {
	Tipo     string           `json:"tipo"   validate:"required"`
	Codigo   *string          `json:"codigo"`
	Base     decimal.Decimal  `json:"base"   validate:"gte=0"`
	Alicuota *decimal.Decimal `json:"alicuota"`
	Monto    *decimal.Decimal `json:"monto"`
}

type ActualizarImpuestoRequest struct {
	Base     *decimal.Decimal `json:"base"`
	Alicuota *decimal.Decimal `json:"alicuota"`
	Monto    *decimal.Decimal `json:"monto"`
}

// ConfirmarCompraRequest finalizes a draft. TotalDeclarado is the amount on
// the paper comprobante: when present it must match the derived total within
// the documented tolerance.
type ConfirmarCompraRequest struct {
	TotalDeclarado   *decimal.Decimal `json:"total_declarado"`
	FechaVencimiento string           `json:"fecha_vencimiento" validate:"required"` // YYYY-MM-DD
	Local            string           `json:"local"`
	Lugar            string           `json:"lugar"`
}

type AnularCompraRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type CompraFilter struct {
	Estado      string `form:"estado"`
	ProveedorID string `form:"proveedor_id"`
	Desde       string `form:"desde"`
	Hasta       string `form:"hasta"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleResponse struct {
	ID                  string          `json:"id"`
	ProductoID          *string         `json:"producto_id"`
	Producto            string          `json:"producto,omitempty"`
	Descripcion         *string         `json:"descripcion"`
	Cantidad            int             `json:"cantidad"`
	CostoUnitNeto       decimal.Decimal `json:"costo_unit_neto"`
	AlicuotaIVA         decimal.Decimal `json:"alicuota_iva"`
	IncluyeIVA          bool            `json:"incluye_iva"`
	DescuentoPorcentaje decimal.Decimal `json:"descuento_porcentaje"`
	OtrosImpuestos      decimal.Decimal `json:"otros_impuestos"`
	TotalLinea          decimal.Decimal `json:"total_linea"`
}

type ImpuestoResponse struct {
	ID       string          `json:"id"`
	Tipo     string          `json:"tipo"`
	Base     decimal.Decimal `json:"base"`
	Alicuota decimal.Decimal `json:"alicuota"`
	Monto    decimal.Decimal `json:"monto"`
}

type CompraResponse struct {
	ID                string             `json:"id"`
	Canal             string             `json:"canal"`
	TipoComp          *string            `json:"tipo_comprobante"`
	PuntoVenta        *int               `json:"punto_venta"`
	NumeroComp        *int               `json:"numero_comprobante"`
	ProveedorID       string             `json:"proveedor_id"`
	Proveedor         string             `json:"proveedor,omitempty"`
	Estado            string             `json:"estado"`
	Moneda            string             `json:"moneda"`
	SubtotalNeto      decimal.Decimal    `json:"subtotal_neto"`
	IVATotal          decimal.Decimal    `json:"iva_total"`
	PercepcionesTotal decimal.Decimal    `json:"percepciones_total"`
	RetencionesTotal  decimal.Decimal    `json:"retenciones_total"`
	Total             decimal.Decimal    `json:"total"`
	Detalles          []DetalleResponse  `json:"detalles,omitempty"`
	Impuestos         []ImpuestoResponse `json:"impuestos,omitempty"`
	CreatedAt         string             `json:"created_at"`
}

type CompraListResponse struct {
	Data  []CompraResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
