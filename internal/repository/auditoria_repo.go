package repository

import (
	"context"

	"provex/internal/model"

	"gorm.io/gorm"
)

type AuditoriaRepository interface {
	Create(ctx context.Context, a *model.Auditoria) error
	ListByEntidad(ctx context.Context, entidad string, limit int) ([]model.Auditoria, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, a *model.Auditoria) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditoriaRepo) ListByEntidad(ctx context.Context, entidad string, limit int) ([]model.Auditoria, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entradas []model.Auditoria
	err := r.db.WithContext(ctx).
		Where("entidad = ?", entidad).
		Order("created_at DESC").
		Limit(limit).
		Find(&entradas).Error
	return entradas, err
}
