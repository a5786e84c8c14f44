package service

import (
	"context"
	"strings"

	"provex/internal/apierror"
	"provex/internal/dto"
	"provex/internal/model"
	"provex/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImpuestoConfigService maintains the tax rate catalog referenced by the
// header-level tax lines.
type ImpuestoConfigService interface {
	Crear(ctx context.Context, req dto.CrearImpuestoConfigRequest) (*dto.ImpuestoConfigResponse, error)
	Listar(ctx context.Context) ([]dto.ImpuestoConfigResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarImpuestoConfigRequest) (*dto.ImpuestoConfigResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type impuestoConfigService struct {
	repo repository.ImpuestoConfigRepository
}

func NewImpuestoConfigService(repo repository.ImpuestoConfigRepository) ImpuestoConfigService {
	return &impuestoConfigService{repo: repo}
}

// NormalizarCodigo is the canonical form under which codes are stored and
// looked up: trimmed and uppercased.
func NormalizarCodigo(codigo string) string {
	return strings.ToUpper(strings.TrimSpace(codigo))
}

func validarAlicuota(a decimal.Decimal) error {
	if a.IsNegative() || a.GreaterThan(decimal.NewFromInt(1)) {
		return apierror.Validation("alicuota debe ser una fraccion entre 0 y 1")
	}
	return nil
}

func (s *impuestoConfigService) Crear(ctx context.Context, req dto.CrearImpuestoConfigRequest) (*dto.ImpuestoConfigResponse, error) {
	if !model.TipoImpuestoValido(req.Tipo) {
		return nil, apierror.Validation("tipo de impuesto desconocido: " + req.Tipo)
	}
	if err := validarAlicuota(req.Alicuota); err != nil {
		return nil, err
	}

	config := &model.ImpuestoConfig{
		Codigo:   NormalizarCodigo(req.Codigo),
		Nombre:   req.Nombre,
		Tipo:     req.Tipo,
		Alicuota: req.Alicuota,
		Activo:   true,
	}
	if config.Codigo == "" {
		return nil, apierror.Validation("codigo no puede quedar vacio")
	}
	if err := s.repo.Create(ctx, config); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("ya existe un impuesto con codigo " + config.Codigo)
		}
		return nil, apierror.Internal(err.Error())
	}
	return impuestoConfigToResponse(config), nil
}

func (s *impuestoConfigService) Listar(ctx context.Context) ([]dto.ImpuestoConfigResponse, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	out := make([]dto.ImpuestoConfigResponse, 0, len(configs))
	for i := range configs {
		out = append(out, *impuestoConfigToResponse(&configs[i]))
	}
	return out, nil
}

func (s *impuestoConfigService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarImpuestoConfigRequest) (*dto.ImpuestoConfigResponse, error) {
	config, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("impuesto no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}

	if req.Nombre != nil {
		config.Nombre = *req.Nombre
	}
	if req.Alicuota != nil {
		if err := validarAlicuota(*req.Alicuota); err != nil {
			return nil, err
		}
		config.Alicuota = *req.Alicuota
	}
	if req.Activo != nil {
		config.Activo = *req.Activo
	}

	if err := s.repo.Update(ctx, config); err != nil {
		return nil, apierror.Internal(err.Error())
	}
	return impuestoConfigToResponse(config), nil
}

func (s *impuestoConfigService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("impuesto no encontrado")
		}
		return apierror.Internal(err.Error())
	}
	return wrapInternal(s.repo.Desactivar(ctx, id))
}

func impuestoConfigToResponse(c *model.ImpuestoConfig) *dto.ImpuestoConfigResponse {
	return &dto.ImpuestoConfigResponse{
		ID:       c.ID.String(),
		Codigo:   c.Codigo,
		Nombre:   c.Nombre,
		Tipo:     c.Tipo,
		Alicuota: c.Alicuota,
		Activo:   c.Activo,
	}
}
