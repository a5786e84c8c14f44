package service

import (
	"context"

	"provex/internal/audit"

	"github.com/rs/zerolog/log"
)

// EventSink is where post-commit audit events go. The worker dispatcher
// implements it against redis; tests use an in-memory slice.
type EventSink interface {
	EnqueueAuditoria(ctx context.Context, ev audit.Evento) error
}

// Auditor emits audit events after a business transaction has committed.
// Emission is strictly best-effort: a queue failure is logged and swallowed,
// it never invalidates the operation it describes.
type Auditor struct {
	sink EventSink
}

func NewAuditor(sink EventSink) *Auditor { return &Auditor{sink: sink} }

// Flush sends every collected event. Safe on a nil receiver and with a nil
// sink so services can run without wiring audit in unit tests.
func (a *Auditor) Flush(ctx context.Context, eventos []audit.Evento) {
	if a == nil || a.sink == nil {
		return
	}
	for _, ev := range eventos {
		if err := a.sink.EnqueueAuditoria(ctx, ev); err != nil {
			log.Error().Err(err).
				Str("entidad", ev.Entidad).
				Str("accion", ev.Accion).
				Msg("auditoria: fallo el encolado del evento")
		}
	}
}
