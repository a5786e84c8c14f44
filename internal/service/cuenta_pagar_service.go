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

// CuentaPagarService owns the payable state machine. Saldo and estado are
// derived from monto_total minus the sum of payment applications; nothing
// outside this service writes those two columns.
type CuentaPagarService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.CuentaPagarResponse, error)
	GetPorCompra(ctx context.Context, compraID uuid.UUID) (*dto.CuentaPagarResponse, error)
	List(ctx context.Context, filter dto.CuentaPagarFilter) (*dto.CuentaPagarListResponse, error)
	CrearManual(ctx context.Context, actor string, req dto.CrearCuentaManualRequest) (*dto.CuentaPagarResponse, error)
	AjustarTotal(ctx context.Context, id uuid.UUID, actor string, req dto.AjustarTotalRequest) (*dto.CuentaPagarResponse, error)
	AjustarVencimiento(ctx context.Context, id uuid.UUID, req dto.AjustarVencimientoRequest) (*dto.CuentaPagarResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID, actor string) error

	// Hooks for the purchase and payment engines, run inside their tx.
	CrearPorConfirmacionTx(tx *gorm.DB, compra *model.Compra, vencimiento time.Time) (*model.CuentaPagar, error)
	SyncPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (*model.CuentaPagar, error)
	EliminarPorCompraTx(tx *gorm.DB, compraID uuid.UUID) error
}

type cuentaPagarService struct {
	repo       repository.CuentaPagarRepository
	compraRepo repository.CompraRepository
	pagoRepo   repository.PagoRepository
	auditor    *Auditor
}

func NewCuentaPagarService(
	repo repository.CuentaPagarRepository,
	compraRepo repository.CompraRepository,
	pagoRepo repository.PagoRepository,
	auditor *Auditor,
) CuentaPagarService {
	return &cuentaPagarService{repo: repo, compraRepo: compraRepo, pagoRepo: pagoRepo, auditor: auditor}
}

// SaldoYEstado derives the payable's two state columns from its total and the
// applied sum. Over-application is clamped at zero, never negative.
func SaldoYEstado(montoTotal, aplicado decimal.Decimal) (decimal.Decimal, string) {
	saldo := round2(montoTotal.Sub(aplicado))
	if saldo.IsNegative() {
		saldo = decimal.Zero
	}
	switch {
	case saldo.IsZero():
		return saldo, model.CxPCancelado
	case saldo.Equal(round2(montoTotal)):
		return saldo, model.CxPPendiente
	default:
		return saldo, model.CxPParcial
	}
}

// CrearPorConfirmacionTx opens the payable for a just-confirmed purchase.
// One payable per purchase: the unique index on compra_id is the backstop.
func (s *cuentaPagarService) CrearPorConfirmacionTx(tx *gorm.DB, compra *model.Compra, vencimiento time.Time) (*model.CuentaPagar, error) {
	cuenta := &model.CuentaPagar{
		CompraID:         compra.ID,
		ProveedorID:      compra.ProveedorID,
		MontoTotal:       compra.Total,
		Saldo:            compra.Total,
		Estado:           model.CxPPendiente,
		FechaEmision:     time.Now(),
		FechaVencimiento: vencimiento,
	}
	if compra.Total.IsZero() {
		cuenta.Estado = model.CxPCancelado
	}
	if err := s.repo.CreateTx(tx, cuenta); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("la compra ya tiene una cuenta por pagar")
		}
		return nil, apierror.Internal(err.Error())
	}
	return cuenta, nil
}

// SyncPorCompraTx re-derives saldo/estado from the application sum, under the
// payable's row lock. Caller must already hold the transaction in which the
// application was mutated.
func (s *cuentaPagarService) SyncPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (*model.CuentaPagar, error) {
	cuenta, err := s.repo.FindByCompraForUpdateTx(tx, compraID)
	if err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, apierror.NotFound("la compra no tiene cuenta por pagar")
		case repository.IsLockNotAvailable(err):
			return nil, apierror.Conflict("la cuenta por pagar esta siendo modificada por otra operacion")
		}
		return nil, apierror.Internal(err.Error())
	}

	aplicado, err := s.pagoRepo.SumAplicadoPorCompraTx(tx, compraID)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}

	saldo, estado := SaldoYEstado(cuenta.MontoTotal, aplicado)
	if err := s.repo.UpdateCamposTx(tx, cuenta.ID, map[string]interface{}{
		"saldo":  saldo,
		"estado": estado,
	}); err != nil {
		return nil, apierror.Internal(err.Error())
	}
	cuenta.Saldo = saldo
	cuenta.Estado = estado
	return cuenta, nil
}

// EliminarPorCompraTx drops the payable when its purchase is voided.
func (s *cuentaPagarService) EliminarPorCompraTx(tx *gorm.DB, compraID uuid.UUID) error {
	if err := s.repo.DeleteByCompraIDTx(tx, compraID); err != nil {
		return apierror.Internal(err.Error())
	}
	return nil
}

func (s *cuentaPagarService) Get(ctx context.Context, id uuid.UUID) (*dto.CuentaPagarResponse, error) {
	cuenta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("cuenta por pagar no encontrada")
		}
		return nil, apierror.Internal(err.Error())
	}
	return cuentaToResponse(cuenta), nil
}

func (s *cuentaPagarService) GetPorCompra(ctx context.Context, compraID uuid.UUID) (*dto.CuentaPagarResponse, error) {
	cuenta, err := s.repo.FindByCompraID(ctx, compraID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("la compra no tiene cuenta por pagar")
		}
		return nil, apierror.Internal(err.Error())
	}
	return cuentaToResponse(cuenta), nil
}

func (s *cuentaPagarService) List(ctx context.Context, filter dto.CuentaPagarFilter) (*dto.CuentaPagarListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	cuentas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	items := make([]dto.CuentaPagarResponse, 0, len(cuentas))
	for i := range cuentas {
		items = append(items, *cuentaToResponse(&cuentas[i]))
	}
	return &dto.CuentaPagarListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// CrearManual covers purchases confirmed outside the system. The target
// purchase must exist and be confirmed, and must not already have a payable.
func (s *cuentaPagarService) CrearManual(ctx context.Context, actor string, req dto.CrearCuentaManualRequest) (*dto.CuentaPagarResponse, error) {
	compraID, err := uuid.Parse(req.CompraID)
	if err != nil {
		return nil, apierror.Validation("compra_id invalido")
	}
	if !req.MontoTotal.IsPositive() {
		return nil, apierror.Validation("monto_total debe ser mayor a cero")
	}
	emision, err := time.Parse("2006-01-02", req.FechaEmision)
	if err != nil {
		return nil, apierror.Validation("fecha_emision invalida, formato YYYY-MM-DD")
	}
	vencimiento, err := time.Parse("2006-01-02", req.FechaVencimiento)
	if err != nil {
		return nil, apierror.Validation("fecha_vencimiento invalida, formato YYYY-MM-DD")
	}
	if vencimiento.Before(emision) {
		return nil, apierror.Validation("fecha_vencimiento no puede ser anterior a fecha_emision")
	}

	compra, err := s.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("compra no encontrada")
		}
		return nil, apierror.Internal(err.Error())
	}
	if compra.Estado != model.CompraConfirmada {
		return nil, apierror.InvalidState("solo una compra confirmada puede tener cuenta por pagar")
	}

	cuenta := &model.CuentaPagar{
		CompraID:         compraID,
		ProveedorID:      compra.ProveedorID,
		MontoTotal:       round2(req.MontoTotal),
		Saldo:            round2(req.MontoTotal),
		Estado:           model.CxPPendiente,
		FechaEmision:     emision,
		FechaVencimiento: vencimiento,
	}
	if err := s.repo.Create(ctx, cuenta); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("la compra ya tiene una cuenta por pagar")
		}
		return nil, apierror.Internal(err.Error())
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:       actor,
		Entidad:     "cuentas_pagar",
		EntidadID:   cuenta.ID.String(),
		Accion:      "crear_manual",
		Descripcion: fmt.Sprintf("Cuenta por pagar manual por %s", cuenta.MontoTotal),
	}})

	return cuentaToResponse(cuenta), nil
}

// AjustarTotal changes monto_total and re-derives saldo/estado. The new total
// can never drop below what is already applied.
func (s *cuentaPagarService) AjustarTotal(ctx context.Context, id uuid.UUID, actor string, req dto.AjustarTotalRequest) (*dto.CuentaPagarResponse, error) {
	if !req.MontoTotal.IsPositive() {
		return nil, apierror.Validation("monto_total debe ser mayor a cero")
	}
	nuevoTotal := round2(req.MontoTotal)

	var cuenta *model.CuentaPagar
	var antes, despues map[string]string

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		cuenta, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			switch {
			case repository.IsNotFound(err):
				return apierror.NotFound("cuenta por pagar no encontrada")
			case repository.IsLockNotAvailable(err):
				return apierror.Conflict("la cuenta por pagar esta siendo modificada por otra operacion")
			}
			return apierror.Internal(err.Error())
		}

		aplicado, err := s.pagoRepo.SumAplicadoPorCompraTx(tx, cuenta.CompraID)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		if nuevoTotal.LessThan(aplicado) {
			return apierror.InvalidState(fmt.Sprintf(
				"el nuevo total %s es menor a lo ya aplicado %s", nuevoTotal, aplicado))
		}

		antes = map[string]string{
			"monto_total": cuenta.MontoTotal.String(),
			"saldo":       cuenta.Saldo.String(),
			"estado":      cuenta.Estado,
		}

		saldo, estado := SaldoYEstado(nuevoTotal, aplicado)
		if err := s.repo.UpdateCamposTx(tx, cuenta.ID, map[string]interface{}{
			"monto_total": nuevoTotal,
			"saldo":       saldo,
			"estado":      estado,
		}); err != nil {
			return apierror.Internal(err.Error())
		}
		cuenta.MontoTotal = nuevoTotal
		cuenta.Saldo = saldo
		cuenta.Estado = estado

		despues = map[string]string{
			"monto_total": nuevoTotal.String(),
			"saldo":       saldo.String(),
			"estado":      estado,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "cuentas_pagar",
		EntidadID: cuenta.ID.String(),
		Accion:    "ajustar_total",
		Cambios:   audit.Diff(antes, despues, []string{"monto_total", "saldo", "estado"}),
	}})

	return cuentaToResponse(cuenta), nil
}

func (s *cuentaPagarService) AjustarVencimiento(ctx context.Context, id uuid.UUID, req dto.AjustarVencimientoRequest) (*dto.CuentaPagarResponse, error) {
	vencimiento, err := time.Parse("2006-01-02", req.FechaVencimiento)
	if err != nil {
		return nil, apierror.Validation("fecha_vencimiento invalida, formato YYYY-MM-DD")
	}

	cuenta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("cuenta por pagar no encontrada")
		}
		return nil, apierror.Internal(err.Error())
	}
	if vencimiento.Before(cuenta.FechaEmision) {
		return nil, apierror.Validation("fecha_vencimiento no puede ser anterior a fecha_emision")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateCamposTx(tx, id, map[string]interface{}{
			"fecha_vencimiento": vencimiento,
		})
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr.Error())
	}
	cuenta.FechaVencimiento = vencimiento
	return cuentaToResponse(cuenta), nil
}

// Eliminar removes a payable. Refused while any payment application points at
// its purchase: applications must be withdrawn first.
func (s *cuentaPagarService) Eliminar(ctx context.Context, id uuid.UUID, actor string) error {
	var cuenta *model.CuentaPagar

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		cuenta, err = s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			switch {
			case repository.IsNotFound(err):
				return apierror.NotFound("cuenta por pagar no encontrada")
			case repository.IsLockNotAvailable(err):
				return apierror.Conflict("la cuenta por pagar esta siendo modificada por otra operacion")
			}
			return apierror.Internal(err.Error())
		}

		n, err := s.pagoRepo.CountAplicacionesPorCompraTx(tx, cuenta.CompraID)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		if n > 0 {
			return apierror.Conflict("la cuenta tiene pagos aplicados, quitelos antes de eliminarla")
		}
		if err := s.repo.DeleteByCompraIDTx(tx, cuenta.CompraID); err != nil {
			return apierror.Internal(err.Error())
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:     actor,
		Entidad:   "cuentas_pagar",
		EntidadID: cuenta.ID.String(),
		Accion:    "eliminar",
	}})
	return nil
}

func cuentaToResponse(c *model.CuentaPagar) *dto.CuentaPagarResponse {
	proveedor := ""
	if c.Proveedor != nil {
		proveedor = c.Proveedor.RazonSocial
	}
	return &dto.CuentaPagarResponse{
		ID:               c.ID.String(),
		CompraID:         c.CompraID.String(),
		ProveedorID:      c.ProveedorID.String(),
		Proveedor:        proveedor,
		MontoTotal:       c.MontoTotal,
		Saldo:            c.Saldo,
		Estado:           c.Estado,
		FechaEmision:     c.FechaEmision.Format("2006-01-02"),
		FechaVencimiento: c.FechaVencimiento.Format("2006-01-02"),
	}
}
