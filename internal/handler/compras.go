package handler

import (
	"net/http"

	"provex/internal/dto"
	"provex/internal/middleware"
	"provex/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler {
	return &ComprasHandler{svc: svc}
}

func actor(c *gin.Context) string {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return ""
	}
	return claims.Username
}

// Crear godoc
// @Summary      Crear compra en borrador
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCompraRequest true "Cabecera de la compra"
// @Success      201 {object} dto.CompraResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/compras [post]
func (h *ComprasHandler) Crear(c *gin.Context) {
	var req dto.CrearCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ComprasHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar compras
// @Tags         compras
// @Produce      json
// @Security     BearerAuth
// @Param        estado       query string false "borrador | confirmada | anulada"
// @Param        proveedor_id query string false "UUID del proveedor"
// @Param        desde        query string false "Fecha YYYY-MM-DD"
// @Param        hasta        query string false "Fecha YYYY-MM-DD"
// @Param        page         query int    false "Pagina (default 1)"
// @Param        limit        query int    false "Registros por pagina (default 20)"
// @Success      200 {object} dto.CompraListResponse
// @Router       /v1/compras [get]
func (h *ComprasHandler) Listar(c *gin.Context) {
	var filter dto.CompraFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) Actualizar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) Eliminar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Detalles ─────────────────────────────────────────────────────────────────

func (h *ComprasHandler) AgregarDetalle(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearDetalleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarDetalle(c.Request.Context(), id, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ComprasHandler) ActualizarDetalle(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	detalleID, ok := pathUUID(c, "detalle_id")
	if !ok {
		return
	}
	var req dto.ActualizarDetalleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarDetalle(c.Request.Context(), id, detalleID, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) EliminarDetalle(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	detalleID, ok := pathUUID(c, "detalle_id")
	if !ok {
		return
	}
	resp, err := h.svc.EliminarDetalle(c.Request.Context(), id, detalleID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Impuestos ────────────────────────────────────────────────────────────────

func (h *ComprasHandler) AgregarImpuesto(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearImpuestoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarImpuesto(c.Request.Context(), id, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ComprasHandler) ActualizarImpuesto(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	impuestoID, ok := pathUUID(c, "impuesto_id")
	if !ok {
		return
	}
	var req dto.ActualizarImpuestoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarImpuesto(c.Request.Context(), id, impuestoID, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) EliminarImpuesto(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	impuestoID, ok := pathUUID(c, "impuesto_id")
	if !ok {
		return
	}
	resp, err := h.svc.EliminarImpuesto(c.Request.Context(), id, impuestoID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Ciclo de vida ────────────────────────────────────────────────────────────

// Confirmar godoc
// @Summary      Confirmar compra
// @Description  Valida el documento, verifica el total declarado contra el calculado, genera movimientos de stock, actualiza costos y crea la cuenta por pagar.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la compra"
// @Param        body body dto.ConfirmarCompraRequest true "Datos de confirmacion"
// @Success      200 {object} dto.CompraResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/compras/{id}/confirmar [post]
func (h *ComprasHandler) Confirmar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmarCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Confirmar(c.Request.Context(), id, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary      Anular compra
// @Description  Revierte los movimientos de stock de la compra y elimina su cuenta por pagar. Falla si la cuenta ya tiene pagos aplicados.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la compra"
// @Param        body body dto.AnularCompraRequest true "Motivo de anulacion"
// @Success      200 {object} dto.CompraResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/compras/{id}/anular [post]
func (h *ComprasHandler) Anular(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), id, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
