package dto

import "github.com/shopspring/decimal"

type CuentaPagarFilter struct {
	Estado      string `form:"estado"`
	ProveedorID string `form:"proveedor_id"`
	VencidasAl  string `form:"vencidas_al"` // YYYY-MM-DD
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// CrearCuentaManualRequest covers the exceptional path where a payable is
// created by hand for a purchase confirmed outside the system.
type CrearCuentaManualRequest struct {
	CompraID         string          `json:"compra_id"         validate:"required,uuid"`
	MontoTotal       decimal.Decimal `json:"monto_total"       validate:"required"`
	FechaEmision     string          `json:"fecha_emision"     validate:"required"` // YYYY-MM-DD
	FechaVencimiento string          `json:"fecha_vencimiento" validate:"required"`
}

type AjustarTotalRequest struct {
	MontoTotal decimal.Decimal `json:"monto_total" validate:"required"`
}

type AjustarVencimientoRequest struct {
	FechaVencimiento string `json:"fecha_vencimiento" validate:"required"`
}

type CuentaPagarResponse struct {
	ID               string          `json:"id"`
	CompraID         string          `json:"compra_id"`
	ProveedorID      string          `json:"proveedor_id"`
	Proveedor        string          `json:"proveedor,omitempty"`
	MontoTotal       decimal.Decimal `json:"monto_total"`
	Saldo            decimal.Decimal `json:"saldo"`
	Estado           string          `json:"estado"`
	FechaEmision     string          `json:"fecha_emision"`
	FechaVencimiento string          `json:"fecha_vencimiento"`
}

type CuentaPagarListResponse struct {
	Data  []CuentaPagarResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
