package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImpuestoConfig is the rate catalog for header-level tax lines.
// Codigo is stored normalized (trimmed, uppercased) and is unique.
type ImpuestoConfig struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo    string          `gorm:"uniqueIndex;not null"`
	Nombre    string          `gorm:"not null"`
	Tipo      string          `gorm:"not null"` // IVA | PERCEPCION | RETENCION | OTRO
	Alicuota  decimal.Decimal `gorm:"type:decimal(7,4);not null"` // fraction 0..1
	Activo    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ImpuestoConfig) TableName() string { return "impuestos_config" }
