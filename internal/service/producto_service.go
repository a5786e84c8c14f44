package service

import (
	"context"
	"fmt"

	"provex/internal/apierror"
	"provex/internal/audit"
	"provex/internal/dto"
	"provex/internal/model"
	"provex/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductoService defines the business logic contract for the catalog.
type ProductoService interface {
	Crear(ctx context.Context, actor string, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, actor string, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID, actor string) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	HistorialCosto(ctx context.Context, id uuid.UUID) ([]dto.HistorialCostoResponse, error)

	AgregarComponente(ctx context.Context, comboID uuid.UUID, req dto.CrearComponenteRequest) (*dto.ComponenteResponse, error)
	ListarComponentes(ctx context.Context, comboID uuid.UUID) ([]dto.ComponenteResponse, error)
	QuitarComponente(ctx context.Context, comboID, componenteID uuid.UUID) error
}

type productoService struct {
	repo    repository.ProductoRepository
	auditor *Auditor
}

func NewProductoService(repo repository.ProductoRepository, auditor *Auditor) ProductoService {
	return &productoService{repo: repo, auditor: auditor}
}

// calcularMargen derives the sale margin percent; zero cost means no margin.
func calcularMargen(costo, precio decimal.Decimal) decimal.Decimal {
	if costo.IsZero() {
		return decimal.Zero
	}
	return round2(precio.Sub(costo).Div(costo).Mul(cien))
}

func (s *productoService) Crear(ctx context.Context, actor string, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.CostoUnitNeto.IsNegative() || req.PrecioVenta.IsNegative() {
		return nil, apierror.Validation("costo y precio no pueden ser negativos")
	}

	producto := &model.Producto{
		CodigoBarras:  req.CodigoBarras,
		Nombre:        req.Nombre,
		Descripcion:   req.Descripcion,
		CostoUnitNeto: req.CostoUnitNeto,
		PrecioVenta:   req.PrecioVenta,
		MargenPct:     calcularMargen(req.CostoUnitNeto, req.PrecioVenta),
		StockMinimo:   req.StockMinimo,
		UnidadMedida:  req.UnidadMedida,
		Activo:        true,
	}
	if producto.UnidadMedida == "" {
		producto.UnidadMedida = "unidad"
	}
	if req.AlicuotaIVA != nil {
		producto.AlicuotaIVA = *req.AlicuotaIVA
	} else {
		producto.AlicuotaIVA = decimal.NewFromInt(21)
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.Validation("categoria_id invalido")
		}
		producto.CategoriaID = &cid
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.Validation("proveedor_id invalido")
		}
		producto.ProveedorID = &pid
	}

	if err := s.repo.Create(ctx, producto); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict(fmt.Sprintf("ya existe un producto con codigo %s", req.CodigoBarras))
		}
		return nil, apierror.Internal(err.Error())
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "productos",
		EntidadID: producto.ID.String(),
		Accion:    "crear",
	}})

	return productoToResponse(producto), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("producto no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	return productoToResponse(producto), nil
}

func (s *productoService) ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("producto no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	return productoToResponse(producto), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, actor string, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("producto no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}

	if req.Nombre != nil {
		producto.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		producto.Descripcion = req.Descripcion
	}
	if req.CategoriaID != nil {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, apierror.Validation("categoria_id invalido")
		}
		producto.CategoriaID = &cid
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, apierror.Validation("proveedor_id invalido")
		}
		producto.ProveedorID = &pid
	}
	if req.CostoUnitNeto != nil {
		if req.CostoUnitNeto.IsNegative() {
			return nil, apierror.Validation("costo_unit_neto no puede ser negativo")
		}
		producto.CostoUnitNeto = *req.CostoUnitNeto
	}
	if req.PrecioVenta != nil {
		if req.PrecioVenta.IsNegative() {
			return nil, apierror.Validation("precio_venta no puede ser negativo")
		}
		producto.PrecioVenta = *req.PrecioVenta
	}
	if req.AlicuotaIVA != nil {
		producto.AlicuotaIVA = *req.AlicuotaIVA
	}
	if req.StockMinimo != nil {
		producto.StockMinimo = *req.StockMinimo
	}
	if req.UnidadMedida != nil {
		producto.UnidadMedida = *req.UnidadMedida
	}
	producto.MargenPct = calcularMargen(producto.CostoUnitNeto, producto.PrecioVenta)

	if err := s.repo.Update(ctx, producto); err != nil {
		return nil, apierror.Internal(err.Error())
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "productos",
		EntidadID: id.String(),
		Accion:    "actualizar",
	}})

	return productoToResponse(producto), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID, actor string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("producto no encontrado")
		}
		return apierror.Internal(err.Error())
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.Internal(err.Error())
	}
	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "productos",
		EntidadID: id.String(),
		Accion:    "desactivar",
	}})
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("producto no encontrado")
		}
		return apierror.Internal(err.Error())
	}
	return wrapInternal(s.repo.Reactivar(ctx, id))
}

func (s *productoService) HistorialCosto(ctx context.Context, id uuid.UUID) ([]dto.HistorialCostoResponse, error) {
	historial, err := s.repo.ListHistorialCosto(ctx, id)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	out := make([]dto.HistorialCostoResponse, 0, len(historial))
	for _, h := range historial {
		var compraID *string
		if h.CompraID != nil {
			s := h.CompraID.String()
			compraID = &s
		}
		out = append(out, dto.HistorialCostoResponse{
			ID:           h.ID.String(),
			CompraID:     compraID,
			CostoAntes:   h.CostoAntes,
			CostoDespues: h.CostoDespues,
			Motivo:       h.Motivo,
			CreatedAt:    h.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}

// AgregarComponente marks the parent as combo on its first component.
// A combo cannot contain itself or another combo.
func (s *productoService) AgregarComponente(ctx context.Context, comboID uuid.UUID, req dto.CrearComponenteRequest) (*dto.ComponenteResponse, error) {
	componenteID, err := uuid.Parse(req.ComponenteID)
	if err != nil {
		return nil, apierror.Validation("componente_id invalido")
	}
	if componenteID == comboID {
		return nil, apierror.Validation("un combo no puede contenerse a si mismo")
	}

	combo, err := s.repo.FindByID(ctx, comboID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("producto no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	componente, err := s.repo.FindByID(ctx, componenteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("componente no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	if componente.EsCombo {
		return nil, apierror.Validation("un combo no puede contener otro combo")
	}

	c := &model.ComboComponente{
		ComboID:      comboID,
		ComponenteID: componenteID,
		Cantidad:     req.Cantidad,
	}
	if err := s.repo.CreateComponente(ctx, c); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("el componente ya pertenece al combo")
		}
		return nil, apierror.Internal(err.Error())
	}

	if !combo.EsCombo {
		combo.EsCombo = true
		if err := s.repo.Update(ctx, combo); err != nil {
			return nil, apierror.Internal(err.Error())
		}
	}

	return &dto.ComponenteResponse{
		ID:           c.ID.String(),
		ComponenteID: componenteID.String(),
		Nombre:       componente.Nombre,
		Cantidad:     c.Cantidad,
	}, nil
}

func (s *productoService) ListarComponentes(ctx context.Context, comboID uuid.UUID) ([]dto.ComponenteResponse, error) {
	componentes, err := s.repo.ListComponentes(ctx, comboID)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	out := make([]dto.ComponenteResponse, 0, len(componentes))
	for _, c := range componentes {
		nombre := ""
		if c.Componente != nil {
			nombre = c.Componente.Nombre
		}
		out = append(out, dto.ComponenteResponse{
			ID:           c.ID.String(),
			ComponenteID: c.ComponenteID.String(),
			Nombre:       nombre,
			Cantidad:     c.Cantidad,
		})
	}
	return out, nil
}

func (s *productoService) QuitarComponente(ctx context.Context, comboID, componenteID uuid.UUID) error {
	componentes, err := s.repo.ListComponentes(ctx, comboID)
	if err != nil {
		return apierror.Internal(err.Error())
	}
	for _, c := range componentes {
		if c.ComponenteID == componenteID {
			return wrapInternal(s.repo.DeleteComponente(ctx, c.ID))
		}
	}
	return apierror.NotFound("el componente no pertenece al combo")
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	var categoriaID, proveedorID *string
	if p.CategoriaID != nil {
		s := p.CategoriaID.String()
		categoriaID = &s
	}
	if p.ProveedorID != nil {
		s := p.ProveedorID.String()
		proveedorID = &s
	}
	return &dto.ProductoResponse{
		ID:            p.ID.String(),
		CodigoBarras:  p.CodigoBarras,
		Nombre:        p.Nombre,
		Descripcion:   p.Descripcion,
		CategoriaID:   categoriaID,
		CostoUnitNeto: p.CostoUnitNeto,
		PrecioVenta:   p.PrecioVenta,
		MargenPct:     p.MargenPct,
		AlicuotaIVA:   p.AlicuotaIVA,
		StockMinimo:   p.StockMinimo,
		UnidadMedida:  p.UnidadMedida,
		EsCombo:       p.EsCombo,
		Activo:        p.Activo,
		ProveedorID:   proveedorID,
	}
}
