package handler

import (
	"net/http"

	"provex/internal/dto"
	"provex/internal/service"

	"github.com/gin-gonic/gin"
)

// ImpuestosHandler administers the catalog of tax definitions (IVA rates,
// percepciones, retenciones) that purchase tax lines can reference by code.
type ImpuestosHandler struct{ svc service.ImpuestoConfigService }

func NewImpuestosHandler(svc service.ImpuestoConfigService) *ImpuestosHandler {
	return &ImpuestosHandler{svc: svc}
}

func (h *ImpuestosHandler) Crear(c *gin.Context) {
	var req dto.CrearImpuestoConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ImpuestosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ImpuestosHandler) Actualizar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarImpuestoConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ImpuestosHandler) Desactivar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
