package audit

// Evento is the fire-and-forget payload queued after a successful business
// transaction. Delivery and failure semantics belong to the worker that
// consumes the queue, not to the service that emits it.
type Evento struct {
	Actor       string   `json:"actor"`
	Entidad     string   `json:"entidad"`
	EntidadID   string   `json:"entidad_id,omitempty"`
	Accion      string   `json:"accion"`
	Descripcion string   `json:"descripcion,omitempty"`
	Cambios     []Cambio `json:"cambios,omitempty"`
}
