package service

import (
	"context"
	"fmt"
	"time"

	"provex/internal/apierror"
	"provex/internal/audit"
	"provex/internal/dto"
	"provex/internal/model"
	"provex/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrdenCompraEnqueuer queues the purchase-order document job fired after a
// purchase is confirmed. The worker dispatcher implements it against redis.
type OrdenCompraEnqueuer interface {
	EnqueueOrdenCompra(ctx context.Context, payload map[string]interface{}) error
}

// CompraService drives the purchase lifecycle. While a purchase is in
// borrador its lines and tax lines can be mutated freely; every mutation
// locks the header, applies the change and re-derives the aggregates in one
// transaction. Confirmation freezes the document, opens the payable and
// posts the stock entries.
type CompraService interface {
	Crear(ctx context.Context, actor string, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	List(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, actor string, req dto.ActualizarCompraRequest) (*dto.CompraResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID, actor string) error

	AgregarDetalle(ctx context.Context, compraID uuid.UUID, actor string, req dto.CrearDetalleRequest) (*dto.CompraResponse, error)
	ActualizarDetalle(ctx context.Context, compraID, detalleID uuid.UUID, actor string, req dto.ActualizarDetalleRequest) (*dto.CompraResponse, error)
	EliminarDetalle(ctx context.Context, compraID, detalleID uuid.UUID, actor string) (*dto.CompraResponse, error)

	AgregarImpuesto(ctx context.Context, compraID uuid.UUID, actor string, req dto.CrearImpuestoRequest) (*dto.CompraResponse, error)
	ActualizarImpuesto(ctx context.Context, compraID, impuestoID uuid.UUID, actor string, req dto.ActualizarImpuestoRequest) (*dto.CompraResponse, error)
	EliminarImpuesto(ctx context.Context, compraID, impuestoID uuid.UUID, actor string) (*dto.CompraResponse, error)

	Confirmar(ctx context.Context, id uuid.UUID, actor string, req dto.ConfirmarCompraRequest) (*dto.CompraResponse, error)
	Anular(ctx context.Context, id uuid.UUID, actor string, req dto.AnularCompraRequest) (*dto.CompraResponse, error)
}

type compraService struct {
	repo          repository.CompraRepository
	proveedorRepo repository.ProveedorRepository
	productoRepo  repository.ProductoRepository
	impuestoRepo  repository.ImpuestoConfigRepository
	pagoRepo      repository.PagoRepository
	stockRepo     repository.StockRepository
	cxp           CuentaPagarService
	stock         StockService
	caps          CapacidadesEsquema
	auditor       *Auditor
	dispatcher    OrdenCompraEnqueuer
}

func NewCompraService(
	repo repository.CompraRepository,
	proveedorRepo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
	impuestoRepo repository.ImpuestoConfigRepository,
	pagoRepo repository.PagoRepository,
	stockRepo repository.StockRepository,
	cxp CuentaPagarService,
	stock StockService,
	caps CapacidadesEsquema,
	auditor *Auditor,
	dispatcher OrdenCompraEnqueuer,
) CompraService {
	return &compraService{
		repo:          repo,
		proveedorRepo: proveedorRepo,
		productoRepo:  productoRepo,
		impuestoRepo:  impuestoRepo,
		pagoRepo:      pagoRepo,
		stockRepo:     stockRepo,
		cxp:           cxp,
		stock:         stock,
		caps:          caps,
		auditor:       auditor,
		dispatcher:    dispatcher,
	}
}

// ── Header CRUD ───────────────────────────────────────────────────────────────

func (s *compraService) Crear(ctx context.Context, actor string, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, apierror.Validation("proveedor_id invalido")
	}
	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("proveedor no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}

	compra := &model.Compra{
		Canal:       req.Canal,
		TipoComp:    req.TipoComp,
		PuntoVenta:  req.PuntoVenta,
		NumeroComp:  req.NumeroComp,
		ProveedorID: proveedorID,
		Estado:      model.CompraBorrador,
		Moneda:      req.Moneda,
		Notas:       req.Notas,
	}
	if compra.Canal == "" {
		compra.Canal = "manual"
	}
	if compra.Moneda == "" {
		compra.Moneda = "ARS"
	}
	if !compra.DocumentoCompleto() {
		return nil, apierror.Validation("punto_venta y numero_comprobante van juntos: ambos o ninguno")
	}

	if err := s.repo.Create(ctx, compra); err != nil {
		return nil, apierror.Internal(err.Error())
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: compra.ID.String(),
		Accion:    "crear",
	}})

	return s.Get(ctx, compra.ID)
}

func (s *compraService) Get(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	compra, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("compra no encontrada")
		}
		return nil, apierror.Internal(err.Error())
	}
	return compraToResponse(compra), nil
}

func (s *compraService) List(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	compras, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	items := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		items = append(items, *compraToResponse(&compras[i]))
	}
	return &dto.CompraListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *compraService) Actualizar(ctx context.Context, id uuid.UUID, actor string, req dto.ActualizarCompraRequest) (*dto.CompraResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.lockEditable(tx, id)
		if err != nil {
			return err
		}

		if req.TipoComp != nil {
			compra.TipoComp = req.TipoComp
		}
		if req.PuntoVenta != nil {
			compra.PuntoVenta = req.PuntoVenta
		}
		if req.NumeroComp != nil {
			compra.NumeroComp = req.NumeroComp
		}
		if !compra.DocumentoCompleto() {
			return apierror.Validation("punto_venta y numero_comprobante van juntos: ambos o ninguno")
		}

		campos := map[string]interface{}{
			"tipo_comprobante":   compra.TipoComp,
			"punto_venta":        compra.PuntoVenta,
			"numero_comprobante": compra.NumeroComp,
		}
		if req.Moneda != nil {
			campos["moneda"] = *req.Moneda
		}
		if req.Notas != nil {
			campos["notas"] = req.Notas
		}
		return wrapInternal(s.repo.UpdateCamposTx(tx, id, campos))
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: id.String(),
		Accion:    "actualizar",
	}})

	return s.Get(ctx, id)
}

// Eliminar borra fisicamente un borrador con sus hijos. Una compra que salio
// del estado borrador nunca se elimina, solo se anula.
func (s *compraService) Eliminar(ctx context.Context, id uuid.UUID, actor string) error {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockEditable(tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteDetallesByCompraTx(tx, id); err != nil {
			return apierror.Internal(err.Error())
		}
		if err := s.repo.DeleteImpuestosByCompraTx(tx, id); err != nil {
			return apierror.Internal(err.Error())
		}
		return wrapInternal(s.repo.DeleteTx(tx, id))
	})
	if txErr != nil {
		return txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: id.String(),
		Accion:    "eliminar",
	}})
	return nil
}

// ── Detalles ──────────────────────────────────────────────────────────────────

func (s *compraService) AgregarDetalle(ctx context.Context, compraID uuid.UUID, actor string, req dto.CrearDetalleRequest) (*dto.CompraResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockEditable(tx, compraID); err != nil {
			return err
		}

		detalle := &model.CompraDetalle{
			CompraID:            compraID,
			Descripcion:         req.Descripcion,
			Cantidad:            req.Cantidad,
			CostoUnitNeto:       req.CostoUnitNeto,
			IncluyeIVA:          req.IncluyeIVA,
			DescuentoPorcentaje: req.DescuentoPorcentaje,
			OtrosImpuestos:      req.OtrosImpuestos,
		}
		if req.AlicuotaIVA != nil {
			detalle.AlicuotaIVA = *req.AlicuotaIVA
		} else {
			detalle.AlicuotaIVA = decimal.NewFromInt(21)
		}
		if req.ProductoID != nil {
			pid, err := uuid.Parse(*req.ProductoID)
			if err != nil {
				return apierror.Validation("producto_id invalido")
			}
			producto, err := s.productoRepo.FindByIDTx(tx, pid)
			if err != nil {
				if repository.IsNotFound(err) {
					return apierror.NotFound("producto no encontrado")
				}
				return apierror.Internal(err.Error())
			}
			if !producto.Activo {
				return apierror.Validation(fmt.Sprintf("el producto %s esta inactivo", producto.Nombre))
			}
			detalle.ProductoID = &pid
		}
		if err := validarDetalle(detalle); err != nil {
			return err
		}

		detalle.TotalLinea = CalcularLinea(detalle).TotalLinea
		if err := s.repo.CreateDetalleTx(tx, detalle); err != nil {
			return apierror.Internal(err.Error())
		}
		return s.recomputeTx(tx, compraID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: compraID.String(),
		Accion:    "agregar_detalle",
	}})

	return s.Get(ctx, compraID)
}

func (s *compraService) ActualizarDetalle(ctx context.Context, compraID, detalleID uuid.UUID, actor string, req dto.ActualizarDetalleRequest) (*dto.CompraResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockEditable(tx, compraID); err != nil {
			return err
		}

		detalle, err := s.repo.FindDetalleTx(tx, detalleID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("linea no encontrada")
			}
			return apierror.Internal(err.Error())
		}
		if detalle.CompraID != compraID {
			return apierror.NotFound("la linea no pertenece a esta compra")
		}

		if req.Descripcion != nil {
			detalle.Descripcion = req.Descripcion
		}
		if req.Cantidad != nil {
			detalle.Cantidad = *req.Cantidad
		}
		if req.CostoUnitNeto != nil {
			detalle.CostoUnitNeto = *req.CostoUnitNeto
		}
		if req.AlicuotaIVA != nil {
			detalle.AlicuotaIVA = *req.AlicuotaIVA
		}
		if req.IncluyeIVA != nil {
			detalle.IncluyeIVA = *req.IncluyeIVA
		}
		if req.DescuentoPorcentaje != nil {
			detalle.DescuentoPorcentaje = *req.DescuentoPorcentaje
		}
		if req.OtrosImpuestos != nil {
			detalle.OtrosImpuestos = *req.OtrosImpuestos
		}
		if err := validarDetalle(detalle); err != nil {
			return err
		}

		detalle.TotalLinea = CalcularLinea(detalle).TotalLinea
		if err := s.repo.SaveDetalleTx(tx, detalle); err != nil {
			return apierror.Internal(err.Error())
		}
		return s.recomputeTx(tx, compraID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: compraID.String(),
		Accion:    "actualizar_detalle",
	}})

	return s.Get(ctx, compraID)
}

func (s *compraService) EliminarDetalle(ctx context.Context, compraID, detalleID uuid.UUID, actor string) (*dto.CompraResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockEditable(tx, compraID); err != nil {
			return err
		}
		detalle, err := s.repo.FindDetalleTx(tx, detalleID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("linea no encontrada")
			}
			return apierror.Internal(err.Error())
		}
		if detalle.CompraID != compraID {
			return apierror.NotFound("la linea no pertenece a esta compra")
		}
		if err := s.repo.DeleteDetalleTx(tx, detalleID); err != nil {
			return apierror.Internal(err.Error())
		}
		return s.recomputeTx(tx, compraID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: compraID.String(),
		Accion:    "eliminar_detalle",
	}})

	return s.Get(ctx, compraID)
}

// ── Impuestos de comprobante ──────────────────────────────────────────────────

func (s *compraService) AgregarImpuesto(ctx context.Context, compraID uuid.UUID, actor string, req dto.CrearImpuestoRequest) (*dto.CompraResponse, error) {
	if !model.TipoImpuestoValido(req.Tipo) {
		return nil, apierror.Validation(fmt.Sprintf("tipo de impuesto desconocido: %s", req.Tipo))
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockEditable(tx, compraID); err != nil {
			return err
		}

		impuesto := &model.CompraImpuesto{
			CompraID: compraID,
			Tipo:     req.Tipo,
			Base:     req.Base,
		}
		if req.Alicuota != nil {
			impuesto.Alicuota = *req.Alicuota
		}
		if req.Codigo != nil {
			config, err := s.impuestoRepo.FindActivoByCodigoTx(tx, NormalizarCodigo(*req.Codigo))
			if err != nil {
				if repository.IsNotFound(err) {
					return apierror.NotFound(fmt.Sprintf("impuesto %s no configurado o inactivo", *req.Codigo))
				}
				return apierror.Internal(err.Error())
			}
			impuesto.ImpuestoConfigID = &config.ID
			if req.Alicuota == nil {
				impuesto.Alicuota = config.Alicuota
			}
		}
		if err := resolverMontoImpuesto(impuesto, req.Monto); err != nil {
			return err
		}

		if err := s.repo.CreateImpuestoTx(tx, impuesto); err != nil {
			return apierror.Internal(err.Error())
		}
		return s.recomputeTx(tx, compraID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: compraID.String(),
		Accion:    "agregar_impuesto",
	}})

	return s.Get(ctx, compraID)
}

func (s *compraService) ActualizarImpuesto(ctx context.Context, compraID, impuestoID uuid.UUID, actor string, req dto.ActualizarImpuestoRequest) (*dto.CompraResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockEditable(tx, compraID); err != nil {
			return err
		}

		impuesto, err := s.repo.FindImpuestoTx(tx, impuestoID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("impuesto no encontrado")
			}
			return apierror.Internal(err.Error())
		}
		if impuesto.CompraID != compraID {
			return apierror.NotFound("el impuesto no pertenece a esta compra")
		}

		if req.Base != nil {
			impuesto.Base = *req.Base
		}
		if req.Alicuota != nil {
			impuesto.Alicuota = *req.Alicuota
		}
		if err := resolverMontoImpuesto(impuesto, req.Monto); err != nil {
			return err
		}

		if err := s.repo.SaveImpuestoTx(tx, impuesto); err != nil {
			return apierror.Internal(err.Error())
		}
		return s.recomputeTx(tx, compraID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: compraID.String(),
		Accion:    "actualizar_impuesto",
	}})

	return s.Get(ctx, compraID)
}

func (s *compraService) EliminarImpuesto(ctx context.Context, compraID, impuestoID uuid.UUID, actor string) (*dto.CompraResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.lockEditable(tx, compraID); err != nil {
			return err
		}
		impuesto, err := s.repo.FindImpuestoTx(tx, impuestoID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("impuesto no encontrado")
			}
			return apierror.Internal(err.Error())
		}
		if impuesto.CompraID != compraID {
			return apierror.NotFound("el impuesto no pertenece a esta compra")
		}
		if err := s.repo.DeleteImpuestoTx(tx, impuestoID); err != nil {
			return apierror.Internal(err.Error())
		}
		return s.recomputeTx(tx, compraID)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "compras",
		EntidadID: compraID.String(),
		Accion:    "eliminar_impuesto",
	}})

	return s.Get(ctx, compraID)
}

// ── Confirmar ─────────────────────────────────────────────────────────────────
// One ACID transaction:
//  1. lock header, must be borrador with at least one line
//  2. re-derive aggregates from current rows
//  3. tolerance check against the declared comprobante total
//  4. estado -> confirmada, persist aggregates
//  5. open the cuenta por pagar
//  6. post one COMPRA stock entry per product line, update last cost

func (s *compraService) Confirmar(ctx context.Context, id uuid.UUID, actor string, req dto.ConfirmarCompraRequest) (*dto.CompraResponse, error) {
	vencimiento, err := time.Parse("2006-01-02", req.FechaVencimiento)
	if err != nil {
		return nil, apierror.Validation("fecha_vencimiento invalida, formato YYYY-MM-DD")
	}

	var agg Agregados

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.lockEditable(tx, id)
		if err != nil {
			return err
		}
		if !compra.DocumentoCompleto() {
			return apierror.Validation("punto_venta y numero_comprobante van juntos: ambos o ninguno")
		}

		detalles, err := s.repo.ListDetallesTx(tx, id)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		if len(detalles) == 0 {
			return apierror.Validation("no se puede confirmar una compra sin lineas")
		}
		impuestos, err := s.repo.ListImpuestosTx(tx, id)
		if err != nil {
			return apierror.Internal(err.Error())
		}

		agg = CalcularAgregados(detalles, impuestos)
		if req.TotalDeclarado != nil && !DentroDeTolerancia(*req.TotalDeclarado, agg.Total) {
			return apierror.Validation(fmt.Sprintf(
				"el total declarado %s no coincide con el total calculado %s", req.TotalDeclarado, agg.Total))
		}

		campos := s.caps.Columnas(agg)
		campos["estado"] = model.CompraConfirmada
		if err := s.repo.UpdateCamposTx(tx, id, campos); err != nil {
			return apierror.Internal(err.Error())
		}
		compra.Total = agg.Total

		if _, err := s.cxp.CrearPorConfirmacionTx(tx, compra, vencimiento); err != nil {
			return err
		}

		refTabla := model.Compra{}.TableName()
		for i := range detalles {
			d := &detalles[i]
			if d.ProductoID == nil {
				continue
			}
			costo := d.CostoUnitNeto
			refID := id
			mov := &model.MovimientoStock{
				ProductoID:    *d.ProductoID,
				Local:         req.Local,
				Lugar:         req.Lugar,
				Tipo:          model.MovCompra,
				Cantidad:      d.Cantidad,
				CostoUnitNeto: &costo,
				RefTabla:      &refTabla,
				RefID:         &refID,
			}
			if err := s.stock.AplicarMovimientoTx(tx, mov); err != nil {
				return err
			}

			producto, err := s.productoRepo.FindByIDTx(tx, *d.ProductoID)
			if err != nil {
				return apierror.Internal(err.Error())
			}
			if !producto.CostoUnitNeto.Equal(d.CostoUnitNeto) {
				if err := s.productoRepo.UpdateCostoTx(tx, producto.ID, d.CostoUnitNeto); err != nil {
					return apierror.Internal(err.Error())
				}
				proveedorID := compra.ProveedorID
				compraID := compra.ID
				historial := &model.HistorialCosto{
					ProductoID:   producto.ID,
					ProveedorID:  &proveedorID,
					CompraID:     &compraID,
					CostoAntes:   producto.CostoUnitNeto,
					CostoDespues: d.CostoUnitNeto,
					Motivo:       "compra_confirmada",
				}
				if err := s.productoRepo.CreateHistorialCostoTx(tx, historial); err != nil {
					return apierror.Internal(err.Error())
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:       actor,
		Entidad:     "compras",
		EntidadID:   id.String(),
		Accion:      "confirmar",
		Descripcion: fmt.Sprintf("Compra confirmada por %s", agg.Total),
	}})

	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueOrdenCompra(ctx, map[string]interface{}{
			"compra_id": id.String(),
		})
	}

	return s.Get(ctx, id)
}

// ── Anular ────────────────────────────────────────────────────────────────────
// A confirmed purchase with payments applied cannot be voided: the caller has
// to withdraw the applications first. Voiding reverses every stock entry the
// confirmation posted and removes the payable.

func (s *compraService) Anular(ctx context.Context, id uuid.UUID, actor string, req dto.AnularCompraRequest) (*dto.CompraResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.lock(tx, id)
		if err != nil {
			return err
		}
		if compra.Estado == model.CompraAnulada {
			return apierror.InvalidState("la compra ya esta anulada")
		}

		if compra.Estado == model.CompraConfirmada {
			n, err := s.pagoRepo.CountAplicacionesPorCompraTx(tx, id)
			if err != nil {
				return apierror.Internal(err.Error())
			}
			if n > 0 {
				return apierror.Conflict("la compra tiene pagos aplicados, quitelos antes de anularla")
			}

			refTabla := model.Compra{}.TableName()
			movimientos, err := s.stockRepo.ListMovimientosByRefTx(tx, refTabla, id)
			if err != nil {
				return apierror.Internal(err.Error())
			}
			movRef := model.MovimientoStock{}.TableName()
			motivo := fmt.Sprintf("Anulacion de compra: %s", req.Motivo)
			for i := range movimientos {
				orig := &movimientos[i]
				yaRevertido, err := s.stockRepo.ExisteReversaTx(tx, orig.ID)
				if err != nil {
					return apierror.Internal(err.Error())
				}
				if yaRevertido {
					continue
				}
				origID := orig.ID
				reversa := &model.MovimientoStock{
					ProductoID:    orig.ProductoID,
					Local:         orig.Local,
					Lugar:         orig.Lugar,
					EstadoMerc:    orig.EstadoMerc,
					Tipo:          model.MovAjuste,
					Cantidad:      -orig.Cantidad,
					CostoUnitNeto: orig.CostoUnitNeto,
					RefTabla:      &movRef,
					RefID:         &origID,
					Notas:         &motivo,
				}
				if err := s.stock.AplicarMovimientoTx(tx, reversa); err != nil {
					return err
				}
			}

			if err := s.cxp.EliminarPorCompraTx(tx, id); err != nil {
				return err
			}
		}

		return wrapInternal(s.repo.UpdateEstadoTx(tx, id, model.CompraAnulada))
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:       actor,
		Entidad:     "compras",
		EntidadID:   id.String(),
		Accion:      "anular",
		Descripcion: req.Motivo,
	}})

	return s.Get(ctx, id)
}

// ── internals ─────────────────────────────────────────────────────────────────

func (s *compraService) lock(tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	compra, err := s.repo.FindForUpdateTx(tx, id)
	if err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, apierror.NotFound("compra no encontrada")
		case repository.IsLockNotAvailable(err):
			return nil, apierror.Conflict("la compra esta siendo modificada por otra operacion")
		}
		return nil, apierror.Internal(err.Error())
	}
	return compra, nil
}

func (s *compraService) lockEditable(tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	compra, err := s.lock(tx, id)
	if err != nil {
		return nil, err
	}
	if !compra.Editable() {
		return nil, apierror.InvalidState(fmt.Sprintf("la compra esta %s y ya no se puede modificar", compra.Estado))
	}
	return compra, nil
}

// recomputeTx re-derives the header aggregates from the current child rows.
// Always the last step of a child mutation, inside the same transaction.
func (s *compraService) recomputeTx(tx *gorm.DB, compraID uuid.UUID) error {
	detalles, err := s.repo.ListDetallesTx(tx, compraID)
	if err != nil {
		return apierror.Internal(err.Error())
	}
	impuestos, err := s.repo.ListImpuestosTx(tx, compraID)
	if err != nil {
		return apierror.Internal(err.Error())
	}
	agg := CalcularAgregados(detalles, impuestos)
	return wrapInternal(s.repo.UpdateCamposTx(tx, compraID, s.caps.Columnas(agg)))
}

func validarDetalle(d *model.CompraDetalle) error {
	if d.Cantidad < 1 {
		return apierror.Validation("cantidad debe ser al menos 1")
	}
	if d.CostoUnitNeto.IsNegative() {
		return apierror.Validation("costo_unit_neto no puede ser negativo")
	}
	if d.AlicuotaIVA.IsNegative() {
		return apierror.Validation("alicuota_iva no puede ser negativa")
	}
	if d.DescuentoPorcentaje.IsNegative() || d.DescuentoPorcentaje.GreaterThan(cien) {
		return apierror.Validation("descuento_porcentaje debe estar entre 0 y 100")
	}
	if d.OtrosImpuestos.IsNegative() {
		return apierror.Validation("otros_impuestos no puede ser negativo")
	}
	if d.ProductoID == nil && (d.Descripcion == nil || *d.Descripcion == "") {
		return apierror.Validation("una linea sin producto necesita descripcion")
	}
	return nil
}

// resolverMontoImpuesto fills Monto: explicit when given, base*alicuota when
// not. Alicuota is a fraction, not a percent.
func resolverMontoImpuesto(i *model.CompraImpuesto, monto *decimal.Decimal) error {
	if i.Base.IsNegative() {
		return apierror.Validation("base no puede ser negativa")
	}
	if i.Alicuota.IsNegative() || i.Alicuota.GreaterThan(decimal.NewFromInt(1)) {
		return apierror.Validation("alicuota debe estar entre 0 y 1")
	}
	if monto != nil {
		if monto.IsNegative() {
			return apierror.Validation("monto no puede ser negativo")
		}
		i.Monto = round2(*monto)
		return nil
	}
	i.Monto = round2(i.Base.Mul(i.Alicuota))
	return nil
}

func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	return apierror.Internal(err.Error())
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	detalles := make([]dto.DetalleResponse, 0, len(c.Detalles))
	for i := range c.Detalles {
		d := &c.Detalles[i]
		var productoID *string
		producto := ""
		if d.ProductoID != nil {
			s := d.ProductoID.String()
			productoID = &s
		}
		if d.Producto != nil {
			producto = d.Producto.Nombre
		}
		detalles = append(detalles, dto.DetalleResponse{
			ID:                  d.ID.String(),
			ProductoID:          productoID,
			Producto:            producto,
			Descripcion:         d.Descripcion,
			Cantidad:            d.Cantidad,
			CostoUnitNeto:       d.CostoUnitNeto,
			AlicuotaIVA:         d.AlicuotaIVA,
			IncluyeIVA:          d.IncluyeIVA,
			DescuentoPorcentaje: d.DescuentoPorcentaje,
			OtrosImpuestos:      d.OtrosImpuestos,
			TotalLinea:          d.TotalLinea,
		})
	}
	impuestos := make([]dto.ImpuestoResponse, 0, len(c.Impuestos))
	for i := range c.Impuestos {
		imp := &c.Impuestos[i]
		impuestos = append(impuestos, dto.ImpuestoResponse{
			ID:       imp.ID.String(),
			Tipo:     imp.Tipo,
			Base:     imp.Base,
			Alicuota: imp.Alicuota,
			Monto:    imp.Monto,
		})
	}
	proveedor := ""
	if c.Proveedor != nil {
		proveedor = c.Proveedor.RazonSocial
	}
	return &dto.CompraResponse{
		ID:                c.ID.String(),
		Canal:             c.Canal,
		TipoComp:          c.TipoComp,
		PuntoVenta:        c.PuntoVenta,
		NumeroComp:        c.NumeroComp,
		ProveedorID:       c.ProveedorID.String(),
		Proveedor:         proveedor,
		Estado:            c.Estado,
		Moneda:            c.Moneda,
		SubtotalNeto:      c.SubtotalNeto,
		IVATotal:          c.IVATotal,
		PercepcionesTotal: c.PercepcionesTotal,
		RetencionesTotal:  c.RetencionesTotal,
		Total:             c.Total,
		Detalles:          detalles,
		Impuestos:         impuestos,
		CreatedAt:         c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
