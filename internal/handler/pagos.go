package handler

import (
	"net/http"

	"provex/internal/apierror"
	"provex/internal/dto"
	"provex/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PagosHandler struct{ svc service.PagoService }

func NewPagosHandler(svc service.PagoService) *PagosHandler {
	return &PagosHandler{svc: svc}
}

func (h *PagosHandler) Crear(c *gin.Context) {
	var req dto.CrearPagoRequest
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

func (h *PagosHandler) Get(c *gin.Context) {
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

func (h *PagosHandler) ListarPorProveedor(c *gin.Context) {
	proveedorID, err := uuid.Parse(c.Query("proveedor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("proveedor_id invalido"))
		return
	}
	resp, err := h.svc.ListPorProveedor(c.Request.Context(), proveedorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagosHandler) Eliminar(c *gin.Context) {
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

// ── Aplicaciones ─────────────────────────────────────────────────────────────

// Aplicar godoc
// @Summary      Aplicar pago a una compra
// @Description  Imputa un monto del pago contra la cuenta por pagar de una compra confirmada del mismo proveedor. El saldo y el estado de la cuenta se recalculan en la misma transaccion.
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del pago"
// @Param        body body dto.AplicarPagoRequest true "Compra y monto"
// @Success      201 {object} dto.AplicacionResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/pagos/{id}/aplicaciones [post]
func (h *PagosHandler) Aplicar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AplicarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Aplicar(c.Request.Context(), id, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PagosHandler) ActualizarAplicacion(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	compraID, ok := pathUUID(c, "compra_id")
	if !ok {
		return
	}
	var req dto.ActualizarAplicacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarAplicacion(c.Request.Context(), id, compraID, actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagosHandler) QuitarAplicacion(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	compraID, ok := pathUUID(c, "compra_id")
	if !ok {
		return
	}
	if err := h.svc.QuitarAplicacion(c.Request.Context(), id, compraID, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
