package service

import (
	"context"

	"provex/internal/apierror"
	"provex/internal/dto"
	"provex/internal/model"
	"provex/internal/repository"

	"github.com/google/uuid"
)

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	categoria := &model.Categoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, categoria); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("ya existe una categoria con ese nombre")
		}
		return nil, apierror.Internal(err.Error())
	}
	return categoriaToResponse(categoria), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for i := range categorias {
		out = append(out, *categoriaToResponse(&categorias[i]))
	}
	return out, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	categoria, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("categoria no encontrada")
		}
		return nil, apierror.Internal(err.Error())
	}
	categoria.Nombre = req.Nombre
	categoria.Descripcion = req.Descripcion
	if err := s.repo.Update(ctx, categoria); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("ya existe una categoria con ese nombre")
		}
		return nil, apierror.Internal(err.Error())
	}
	return categoriaToResponse(categoria), nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("categoria no encontrada")
		}
		return apierror.Internal(err.Error())
	}
	n, err := s.repo.CountProductos(ctx, id)
	if err != nil {
		return apierror.Internal(err.Error())
	}
	if n > 0 {
		return apierror.Conflict("la categoria tiene productos asignados")
	}
	return wrapInternal(s.repo.SoftDelete(ctx, id))
}

func categoriaToResponse(c *model.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}
