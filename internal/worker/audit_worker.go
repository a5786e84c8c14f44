package worker

// audit_worker.go
// Persists audit events from QueueAuditoria. Runs outside the business
// transaction that emitted the event, so a failed write never rolls the
// operation back; failed jobs retry and eventually land in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"

	"provex/internal/audit"
	"provex/internal/model"
	"provex/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuditWorker struct {
	repo repository.AuditoriaRepository
}

func NewAuditWorker(repo repository.AuditoriaRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var ev audit.Evento
	if err := json.Unmarshal(raw, &ev); err != nil {
		// Malformed payloads never succeed; log and drop instead of retrying.
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return nil
	}

	entrada := &model.Auditoria{
		Actor:       ev.Actor,
		Entidad:     ev.Entidad,
		Accion:      ev.Accion,
		Descripcion: ev.Descripcion,
	}
	if ev.EntidadID != "" {
		id, err := uuid.Parse(ev.EntidadID)
		if err == nil {
			entrada.EntidadID = &id
		}
	}
	if len(ev.Cambios) > 0 {
		cambios, err := json.Marshal(ev.Cambios)
		if err != nil {
			return fmt.Errorf("audit_worker: marshal cambios: %w", err)
		}
		entrada.Cambios = cambios
	}

	if err := w.repo.Create(ctx, entrada); err != nil {
		return fmt.Errorf("audit_worker: persist: %w", err)
	}
	return nil
}
