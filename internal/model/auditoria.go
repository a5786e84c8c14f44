package model

import (
	"time"

	"github.com/google/uuid"
)

// Auditoria is the persisted audit trail entry. Rows are written by the async
// audit worker, never from inside a business transaction, so a failed write
// can never roll back the operation it describes.
type Auditoria struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Actor       string     `gorm:"not null;index"` // opaque user identifier
	Entidad     string     `gorm:"not null;index"`
	EntidadID   *uuid.UUID `gorm:"type:uuid;index"`
	Accion      string     `gorm:"not null"` // crear | actualizar | eliminar | confirmar | anular | aplicar_pago | revertir
	Descripcion string
	Cambios     []byte `gorm:"type:jsonb"` // serialized audit.Cambio list
	CreatedAt   time.Time
}

func (Auditoria) TableName() string { return "auditoria" }
