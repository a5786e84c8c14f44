package handler

import (
	"net/http"

	"provex/internal/dto"
	"provex/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// PostMovimiento godoc
// @Summary      Registrar movimiento de stock manual
// @Description  Agrega un movimiento al libro de stock y actualiza el balance por ubicacion. El libro es append-only: las correcciones se hacen con movimientos de ajuste.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PostMovimientoRequest true "Movimiento"
// @Success      201 {object} dto.MovimientoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/stock/movimientos [post]
func (h *StockHandler) PostMovimiento(c *gin.Context) {
	var req dto.PostMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PostMovimiento(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StockHandler) GetMovimiento(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetMovimiento(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Revertir godoc
// @Summary      Revertir movimiento de stock
// @Description  Genera un movimiento de ajuste con la cantidad invertida, referenciando al original. Un movimiento solo puede revertirse una vez.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del movimiento"
// @Param        body body dto.RevertirMovimientoRequest true "Motivo"
// @Success      201 {object} dto.MovimientoResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/stock/movimientos/{id}/revertir [post]
func (h *StockHandler) Revertir(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RevertirMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RevertirMovimiento(c.Request.Context(), id, actor(c), req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StockHandler) ActualizarNotas(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarNotasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ActualizarNotas(c.Request.Context(), id, req.Notas); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StockHandler) ListarBalances(c *gin.Context) {
	productoID, ok := pathUUID(c, "producto_id")
	if !ok {
		return
	}
	resp, err := h.svc.ListBalances(c.Request.Context(), productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
