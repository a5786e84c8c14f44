package dto

import "github.com/shopspring/decimal"

type PostMovimientoRequest struct {
	ProductoID    string           `json:"producto_id" validate:"required,uuid"`
	Local         string           `json:"local"`
	Lugar         string           `json:"lugar"`
	EstadoMerc    string           `json:"estado_mercaderia"`
	Tipo          string           `json:"tipo"     validate:"required"`
	Cantidad      int              `json:"cantidad" validate:"required"`
	CostoUnitNeto *decimal.Decimal `json:"costo_unit_neto"`
	RefTabla      *string          `json:"ref_tabla"`
	RefID         *string          `json:"ref_id" validate:"omitempty,uuid"`
	Notas         *string          `json:"notas"`
}

type RevertirMovimientoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ActualizarNotasRequest struct {
	Notas string `json:"notas" validate:"required"`
}

type MovimientoFilter struct {
	ProductoID string `form:"producto_id"`
	Tipo       string `form:"tipo"`
	RefTabla   string `form:"ref_tabla"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MovimientoResponse struct {
	ID            string           `json:"id"`
	ProductoID    string           `json:"producto_id"`
	Producto      string           `json:"producto,omitempty"`
	Local         string           `json:"local"`
	Lugar         string           `json:"lugar"`
	EstadoMerc    string           `json:"estado_mercaderia"`
	Tipo          string           `json:"tipo"`
	Cantidad      int              `json:"cantidad"`
	CostoUnitNeto *decimal.Decimal `json:"costo_unit_neto"`
	RefTabla      *string          `json:"ref_tabla"`
	RefID         *string          `json:"ref_id"`
	Notas         *string          `json:"notas"`
	CreatedAt     string           `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type StockResponse struct {
	ProductoID string `json:"producto_id"`
	Local      string `json:"local"`
	Lugar      string `json:"lugar"`
	EstadoMerc string `json:"estado_mercaderia"`
	Cantidad   int    `json:"cantidad"`
}
