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
	"gorm.io/gorm"
)

// PagoService registers supplier payments and distributes them across
// payables. Every application mutation re-derives the payable's saldo and
// estado inside the same transaction.
type PagoService interface {
	Crear(ctx context.Context, actor string, req dto.CrearPagoRequest) (*dto.PagoResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PagoResponse, error)
	ListPorProveedor(ctx context.Context, proveedorID uuid.UUID) ([]dto.PagoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID, actor string) error

	Aplicar(ctx context.Context, pagoID uuid.UUID, actor string, req dto.AplicarPagoRequest) (*dto.AplicacionResponse, error)
	ActualizarAplicacion(ctx context.Context, pagoID, compraID uuid.UUID, actor string, req dto.ActualizarAplicacionRequest) (*dto.AplicacionResponse, error)
	QuitarAplicacion(ctx context.Context, pagoID, compraID uuid.UUID, actor string) error
}

type pagoService struct {
	repo          repository.PagoRepository
	compraRepo    repository.CompraRepository
	proveedorRepo repository.ProveedorRepository
	cxpRepo       repository.CuentaPagarRepository
	cxp           CuentaPagarService
	auditor       *Auditor
}

func NewPagoService(
	repo repository.PagoRepository,
	compraRepo repository.CompraRepository,
	proveedorRepo repository.ProveedorRepository,
	cxpRepo repository.CuentaPagarRepository,
	cxp CuentaPagarService,
	auditor *Auditor,
) PagoService {
	return &pagoService{
		repo:          repo,
		compraRepo:    compraRepo,
		proveedorRepo: proveedorRepo,
		cxpRepo:       cxpRepo,
		cxp:           cxp,
		auditor:       auditor,
	}
}

func (s *pagoService) Crear(ctx context.Context, actor string, req dto.CrearPagoRequest) (*dto.PagoResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, apierror.Validation("proveedor_id invalido")
	}
	if !req.MontoTotal.IsPositive() {
		return nil, apierror.Validation("monto_total debe ser mayor a cero")
	}
	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, apierror.Validation("fecha invalida, formato YYYY-MM-DD")
	}
	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("proveedor no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}

	medio := req.Medio
	if medio == "" {
		medio = "transferencia"
	}
	pago := &model.PagoProveedor{
		ProveedorID: proveedorID,
		MontoTotal:  round2(req.MontoTotal),
		Fecha:       fecha,
		Medio:       medio,
		Notas:       req.Notas,
	}
	if err := s.repo.Create(ctx, pago); err != nil {
		return nil, apierror.Internal(err.Error())
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:       actor,
		Entidad:     "pagos_proveedor",
		EntidadID:   pago.ID.String(),
		Accion:      "crear",
		Descripcion: fmt.Sprintf("Pago %s por %s", medio, pago.MontoTotal),
	}})

	return pagoToResponse(pago), nil
}

func (s *pagoService) Get(ctx context.Context, id uuid.UUID) (*dto.PagoResponse, error) {
	pago, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("pago no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	return pagoToResponse(pago), nil
}

func (s *pagoService) ListPorProveedor(ctx context.Context, proveedorID uuid.UUID) ([]dto.PagoResponse, error) {
	pagos, err := s.repo.ListByProveedor(ctx, proveedorID)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	out := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		out = append(out, *pagoToResponse(&pagos[i]))
	}
	return out, nil
}

// Eliminar removes a payment that has no applications left.
func (s *pagoService) Eliminar(ctx context.Context, id uuid.UUID, actor string) error {
	pago, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("pago no encontrado")
		}
		return apierror.Internal(err.Error())
	}
	if len(pago.Aplicaciones) > 0 {
		return apierror.Conflict("el pago tiene aplicaciones, quitelas antes de eliminarlo")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal(err.Error())
	}
	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "pagos_proveedor",
		EntidadID: id.String(),
		Accion:    "eliminar",
	}})
	return nil
}

// Aplicar distributes part of a payment onto one purchase's payable:
//
//   - the purchase must be confirmed and belong to the payment's supplier
//   - sum of the payment's applications never exceeds the payment amount
//   - sum of the purchase's applications never exceeds the payable total
//   - one application row per (pago, compra); re-applying is an update
func (s *pagoService) Aplicar(ctx context.Context, pagoID uuid.UUID, actor string, req dto.AplicarPagoRequest) (*dto.AplicacionResponse, error) {
	compraID, err := uuid.Parse(req.CompraID)
	if err != nil {
		return nil, apierror.Validation("compra_id invalido")
	}
	if !req.MontoAplicado.IsPositive() {
		return nil, apierror.Validation("monto_aplicado debe ser mayor a cero")
	}
	monto := round2(req.MontoAplicado)

	var aplicacion *model.PagoAplicacion

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pago, err := s.repo.FindTx(tx, pagoID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("pago no encontrado")
			}
			return apierror.Internal(err.Error())
		}

		compra, err := s.compraRepo.FindForUpdateTx(tx, compraID)
		if err != nil {
			switch {
			case repository.IsNotFound(err):
				return apierror.NotFound("compra no encontrada")
			case repository.IsLockNotAvailable(err):
				return apierror.Conflict("la compra esta siendo modificada por otra operacion")
			}
			return apierror.Internal(err.Error())
		}
		if compra.Estado != model.CompraConfirmada {
			return apierror.InvalidState("solo se aplican pagos a compras confirmadas")
		}
		if compra.ProveedorID != pago.ProveedorID {
			return apierror.Validation("el pago y la compra pertenecen a proveedores distintos")
		}

		// Lock the payable before reading the running sums.
		cuenta, err := s.cxpFindForUpdate(tx, compraID)
		if err != nil {
			return err
		}

		if _, err := s.repo.FindAplicacionTx(tx, pagoID, compraID); err == nil {
			return apierror.Conflict("el pago ya esta aplicado a esta compra, use la actualizacion")
		} else if !repository.IsNotFound(err) {
			return apierror.Internal(err.Error())
		}

		aplicadoPago, err := s.repo.SumAplicadoPorPagoTx(tx, pagoID)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		if aplicadoPago.Add(monto).GreaterThan(pago.MontoTotal) {
			return apierror.Conflict(fmt.Sprintf(
				"la aplicacion supera el monto del pago: disponible %s", pago.MontoTotal.Sub(aplicadoPago)))
		}

		aplicadoCompra, err := s.repo.SumAplicadoPorCompraTx(tx, compraID)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		if aplicadoCompra.Add(monto).GreaterThan(cuenta.MontoTotal) {
			return apierror.Conflict(fmt.Sprintf(
				"la aplicacion supera el saldo de la cuenta: disponible %s", cuenta.MontoTotal.Sub(aplicadoCompra)))
		}

		aplicacion = &model.PagoAplicacion{
			PagoID:        pagoID,
			CompraID:      compraID,
			MontoAplicado: monto,
		}
		if err := s.repo.CreateAplicacionTx(tx, aplicacion); err != nil {
			if repository.IsUniqueViolation(err) {
				return apierror.Conflict("el pago ya esta aplicado a esta compra, use la actualizacion")
			}
			return apierror.Internal(err.Error())
		}

		_, err = s.cxp.SyncPorCompraTx(tx, compraID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:       actor,
		Entidad:     "pago_aplicaciones",
		EntidadID:   aplicacion.ID.String(),
		Accion:      "aplicar",
		Descripcion: fmt.Sprintf("Aplicados %s del pago %s a la compra %s", monto, pagoID, compraID),
	}})

	return aplicacionToResponse(aplicacion), nil
}

func (s *pagoService) ActualizarAplicacion(ctx context.Context, pagoID, compraID uuid.UUID, actor string, req dto.ActualizarAplicacionRequest) (*dto.AplicacionResponse, error) {
	if !req.MontoAplicado.IsPositive() {
		return nil, apierror.Validation("monto_aplicado debe ser mayor a cero")
	}
	monto := round2(req.MontoAplicado)

	var aplicacion *model.PagoAplicacion

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pago, err := s.repo.FindTx(tx, pagoID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("pago no encontrado")
			}
			return apierror.Internal(err.Error())
		}

		cuenta, err := s.cxpFindForUpdate(tx, compraID)
		if err != nil {
			return err
		}

		aplicacion, err = s.repo.FindAplicacionTx(tx, pagoID, compraID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("el pago no esta aplicado a esta compra")
			}
			return apierror.Internal(err.Error())
		}

		aplicadoPago, err := s.repo.SumAplicadoPorPagoTx(tx, pagoID)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		restoPago := aplicadoPago.Sub(aplicacion.MontoAplicado)
		if restoPago.Add(monto).GreaterThan(pago.MontoTotal) {
			return apierror.Conflict(fmt.Sprintf(
				"la aplicacion supera el monto del pago: disponible %s", pago.MontoTotal.Sub(restoPago)))
		}

		aplicadoCompra, err := s.repo.SumAplicadoPorCompraTx(tx, compraID)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		restoCompra := aplicadoCompra.Sub(aplicacion.MontoAplicado)
		if restoCompra.Add(monto).GreaterThan(cuenta.MontoTotal) {
			return apierror.Conflict(fmt.Sprintf(
				"la aplicacion supera el saldo de la cuenta: disponible %s", cuenta.MontoTotal.Sub(restoCompra)))
		}

		aplicacion.MontoAplicado = monto
		if err := s.repo.SaveAplicacionTx(tx, aplicacion); err != nil {
			return apierror.Internal(err.Error())
		}

		_, err = s.cxp.SyncPorCompraTx(tx, compraID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "pago_aplicaciones",
		EntidadID: aplicacion.ID.String(),
		Accion:    "actualizar",
	}})

	return aplicacionToResponse(aplicacion), nil
}

func (s *pagoService) QuitarAplicacion(ctx context.Context, pagoID, compraID uuid.UUID, actor string) error {
	var aplicacion *model.PagoAplicacion

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.cxpFindForUpdate(tx, compraID); err != nil {
			return err
		}

		var err error
		aplicacion, err = s.repo.FindAplicacionTx(tx, pagoID, compraID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("el pago no esta aplicado a esta compra")
			}
			return apierror.Internal(err.Error())
		}
		if err := s.repo.DeleteAplicacionTx(tx, aplicacion.ID); err != nil {
			return apierror.Internal(err.Error())
		}

		_, err = s.cxp.SyncPorCompraTx(tx, compraID)
		return err
	})
	if txErr != nil {
		return txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "pago_aplicaciones",
		EntidadID: aplicacion.ID.String(),
		Accion:    "quitar",
	}})
	return nil
}

// cxpFindForUpdate locks the payable of a purchase and maps the repo errors.
// SyncPorCompraTx re-locks the same row later in the tx; the second lock is a
// no-op because the tx already holds it.
func (s *pagoService) cxpFindForUpdate(tx *gorm.DB, compraID uuid.UUID) (*model.CuentaPagar, error) {
	cuenta, err := s.cxpRepo.FindByCompraForUpdateTx(tx, compraID)
	if err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, apierror.NotFound("la compra no tiene cuenta por pagar")
		case repository.IsLockNotAvailable(err):
			return nil, apierror.Conflict("la cuenta por pagar esta siendo modificada por otra operacion")
		}
		return nil, apierror.Internal(err.Error())
	}
	return cuenta, nil
}

func pagoToResponse(p *model.PagoProveedor) *dto.PagoResponse {
	aplicaciones := make([]dto.AplicacionResponse, 0, len(p.Aplicaciones))
	for i := range p.Aplicaciones {
		aplicaciones = append(aplicaciones, *aplicacionToResponse(&p.Aplicaciones[i]))
	}
	return &dto.PagoResponse{
		ID:           p.ID.String(),
		ProveedorID:  p.ProveedorID.String(),
		MontoTotal:   p.MontoTotal,
		Fecha:        p.Fecha.Format("2006-01-02"),
		Medio:        p.Medio,
		Notas:        p.Notas,
		Aplicaciones: aplicaciones,
	}
}

func aplicacionToResponse(a *model.PagoAplicacion) *dto.AplicacionResponse {
	return &dto.AplicacionResponse{
		ID:            a.ID.String(),
		PagoID:        a.PagoID.String(),
		CompraID:      a.CompraID.String(),
		MontoAplicado: a.MontoAplicado,
	}
}
