package handler

import (
	"net/http"

	"provex/internal/dto"
	"provex/internal/service"

	"github.com/gin-gonic/gin"
)

type CuentasPagarHandler struct{ svc service.CuentaPagarService }

func NewCuentasPagarHandler(svc service.CuentaPagarService) *CuentasPagarHandler {
	return &CuentasPagarHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar cuentas por pagar
// @Tags         cuentas-pagar
// @Produce      json
// @Security     BearerAuth
// @Param        estado       query string false "pendiente | parcial | cancelado"
// @Param        proveedor_id query string false "UUID del proveedor"
// @Param        vencidas_al  query string false "Fecha YYYY-MM-DD, solo cuentas vencidas a esa fecha"
// @Success      200 {object} dto.CuentaPagarListResponse
// @Router       /v1/cuentas-pagar [get]
func (h *CuentasPagarHandler) Listar(c *gin.Context) {
	var filter dto.CuentaPagarFilter
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

func (h *CuentasPagarHandler) Get(c *gin.Context) {
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

// GetPorCompra resolves the payable through the purchase ID in the path.
func (h *CuentasPagarHandler) GetPorCompra(c *gin.Context) {
	compraID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetPorCompra(c.Request.Context(), compraID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CuentasPagarHandler) CrearManual(c *gin.Context) {
	var req dto.CrearCuentaManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearManual(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CuentasPagarHandler) AjustarTotal(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarTotalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarTotal(c.Request.Context(), id, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CuentasPagarHandler) AjustarVencimiento(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarVencimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarVencimiento(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CuentasPagarHandler) Eliminar(c *gin.Context) {
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
