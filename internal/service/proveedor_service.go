package service

import (
	"context"

	"provex/internal/apierror"
	"provex/internal/dto"
	"provex/internal/model"
	"provex/internal/repository"

	"github.com/google/uuid"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error

	AgregarContacto(ctx context.Context, proveedorID uuid.UUID, req dto.CrearContactoRequest) (*dto.ContactoResponse, error)
	QuitarContacto(ctx context.Context, contactoID uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	proveedor := &model.Proveedor{
		RazonSocial:   req.RazonSocial,
		CUIT:          req.CUIT,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		CondicionPago: req.CondicionPago,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, proveedor); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("ya existe un proveedor con ese CUIT")
		}
		return nil, apierror.Internal(err.Error())
	}
	return proveedorToResponse(proveedor), nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	proveedor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("proveedor no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	return proveedorToResponse(proveedor), nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	out := make([]dto.ProveedorResponse, 0, len(proveedores))
	for i := range proveedores {
		out = append(out, *proveedorToResponse(&proveedores[i]))
	}
	return out, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	proveedor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("proveedor no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}

	if req.RazonSocial != nil {
		proveedor.RazonSocial = *req.RazonSocial
	}
	if req.Telefono != nil {
		proveedor.Telefono = req.Telefono
	}
	if req.Email != nil {
		proveedor.Email = req.Email
	}
	if req.Direccion != nil {
		proveedor.Direccion = req.Direccion
	}
	if req.CondicionPago != nil {
		proveedor.CondicionPago = req.CondicionPago
	}

	if err := s.repo.Update(ctx, proveedor); err != nil {
		return nil, apierror.Internal(err.Error())
	}
	return proveedorToResponse(proveedor), nil
}

// Desactivar refuses while the supplier has purchases on file: history must
// stay navigable.
func (s *proveedorService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("proveedor no encontrado")
		}
		return apierror.Internal(err.Error())
	}
	n, err := s.repo.CountCompras(ctx, id)
	if err != nil {
		return apierror.Internal(err.Error())
	}
	if n > 0 {
		return apierror.Conflict("el proveedor tiene compras registradas, solo puede desactivarse sin historial")
	}
	return wrapInternal(s.repo.SoftDelete(ctx, id))
}

func (s *proveedorService) AgregarContacto(ctx context.Context, proveedorID uuid.UUID, req dto.CrearContactoRequest) (*dto.ContactoResponse, error) {
	if _, err := s.repo.FindByID(ctx, proveedorID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("proveedor no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	contacto := &model.ContactoProveedor{
		ProveedorID: proveedorID,
		Nombre:      req.Nombre,
		Cargo:       req.Cargo,
		Telefono:    req.Telefono,
		Email:       req.Email,
	}
	if err := s.repo.CreateContacto(ctx, contacto); err != nil {
		return nil, apierror.Internal(err.Error())
	}
	return &dto.ContactoResponse{
		ID:       contacto.ID.String(),
		Nombre:   contacto.Nombre,
		Cargo:    contacto.Cargo,
		Telefono: contacto.Telefono,
		Email:    contacto.Email,
	}, nil
}

func (s *proveedorService) QuitarContacto(ctx context.Context, contactoID uuid.UUID) error {
	return wrapInternal(s.repo.DeleteContacto(ctx, contactoID))
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	contactos := make([]dto.ContactoResponse, 0, len(p.Contactos))
	for _, c := range p.Contactos {
		contactos = append(contactos, dto.ContactoResponse{
			ID:       c.ID.String(),
			Nombre:   c.Nombre,
			Cargo:    c.Cargo,
			Telefono: c.Telefono,
			Email:    c.Email,
		})
	}
	return &dto.ProveedorResponse{
		ID:            p.ID.String(),
		RazonSocial:   p.RazonSocial,
		CUIT:          p.CUIT,
		Telefono:      p.Telefono,
		Email:         p.Email,
		Direccion:     p.Direccion,
		CondicionPago: p.CondicionPago,
		Activo:        p.Activo,
		Contactos:     contactos,
	}
}
