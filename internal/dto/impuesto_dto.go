package dto

import "github.com/shopspring/decimal"

type CrearImpuestoConfigRequest struct {
	Codigo   string          `json:"codigo"   validate:"required,min=2,max=30"`
	Nombre   string          `json:"nombre"   validate:"required,min=2,max=120"`
	Tipo     string          `json:"tipo"     validate:"required"`
	Alicuota decimal.Decimal `json:"alicuota" validate:"required"` // fraction 0..1
}

type ActualizarImpuestoConfigRequest struct {
	Nombre   *string          `json:"nombre" validate:"omitempty,min=2,max=120"`
	Alicuota *decimal.Decimal `json:"alicuota"`
	Activo   *bool            `json:"activo"`
}

type ImpuestoConfigResponse struct {
	ID       string          `json:"id"`
	Codigo   string          `json:"codigo"`
	Nombre   string          `json:"nombre"`
	Tipo     string          `json:"tipo"`
	Alicuota decimal.Decimal `json:"alicuota"`
	Activo   bool            `json:"activo"`
}
