package dto

import "github.com/shopspring/decimal"

type CrearPagoRequest struct {
	ProveedorID string          `json:"proveedor_id" validate:"required,uuid"`
	MontoTotal  decimal.Decimal `json:"monto_total"  validate:"required"`
	Fecha       string          `json:"fecha"        validate:"required"` // YYYY-MM-DD
	Medio       string          `json:"medio"`
	Notas       *string         `json:"notas"`
}

type AplicarPagoRequest struct {
	CompraID      string          `json:"compra_id"      validate:"required,uuid"`
	MontoAplicado decimal.Decimal `json:"monto_aplicado" validate:"required"`
}

type ActualizarAplicacionRequest struct {
	MontoAplicado decimal.Decimal `json:"monto_aplicado" validate:"required"`
}

type AplicacionResponse struct {
	ID            string          `json:"id"`
	PagoID        string          `json:"pago_id"`
	CompraID      string          `json:"compra_id"`
	MontoAplicado decimal.Decimal `json:"monto_aplicado"`
}

type PagoResponse struct {
	ID           string               `json:"id"`
	ProveedorID  string               `json:"proveedor_id"`
	MontoTotal   decimal.Decimal      `json:"monto_total"`
	Fecha        string               `json:"fecha"`
	Medio        string               `json:"medio"`
	Notas        *string              `json:"notas"`
	Aplicaciones []AplicacionResponse `json:"aplicaciones,omitempty"`
}
