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
	"gorm.io/gorm"
)

// StockService is the append-only stock ledger. Movements are immutable once
// written: corrections are new inverse movements, and the derived balance row
// is updated under a FOR UPDATE NOWAIT lock inside the same transaction.
type StockService interface {
	PostMovimiento(ctx context.Context, actor string, req dto.PostMovimientoRequest) (*dto.MovimientoResponse, error)
	RevertirMovimiento(ctx context.Context, id uuid.UUID, actor, motivo string) (*dto.MovimientoResponse, error)
	ActualizarNotas(ctx context.Context, id uuid.UUID, notas string) error
	GetMovimiento(ctx context.Context, id uuid.UUID) (*dto.MovimientoResponse, error)
	ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	ListBalances(ctx context.Context, productoID uuid.UUID) ([]dto.StockResponse, error)

	// AplicarMovimientoTx validates the movement, locks (or creates) the
	// balance row and appends the ledger entry, all inside the caller's
	// transaction. Used by the purchase engine on confirm/anular.
	AplicarMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error
}

type stockService struct {
	repo         repository.StockRepository
	productoRepo repository.ProductoRepository
	auditor      *Auditor
}

func NewStockService(repo repository.StockRepository, productoRepo repository.ProductoRepository, auditor *Auditor) StockService {
	return &stockService{repo: repo, productoRepo: productoRepo, auditor: auditor}
}

// validarMovimiento enforces the ledger guardrails: cantidad nunca cero,
// signo coherente con el tipo, costo solo en entradas que lo requieren.
func validarMovimiento(m *model.MovimientoStock) error {
	if m.Cantidad == 0 {
		return apierror.Validation("la cantidad de un movimiento no puede ser cero")
	}
	signo, ok := model.SignoMovimiento(m.Tipo)
	if !ok {
		return apierror.Validation(fmt.Sprintf("tipo de movimiento desconocido: %s", m.Tipo))
	}
	if signo > 0 && m.Cantidad < 0 {
		return apierror.Validation(fmt.Sprintf("un movimiento %s debe tener cantidad positiva", m.Tipo))
	}
	if signo < 0 && m.Cantidad > 0 {
		return apierror.Validation(fmt.Sprintf("un movimiento %s debe tener cantidad negativa", m.Tipo))
	}
	if m.CostoUnitNeto != nil && m.CostoUnitNeto.IsNegative() {
		return apierror.Validation("costo_unit_neto no puede ser negativo")
	}
	if (m.RefTabla == nil) != (m.RefID == nil) {
		return apierror.Validation("ref_tabla y ref_id van juntos: ambos o ninguno")
	}
	if m.RefID != nil && *m.RefTabla == "" {
		return apierror.Validation("ref_tabla no puede estar vacia cuando hay ref_id")
	}
	return nil
}

func (s *stockService) AplicarMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	if err := validarMovimiento(m); err != nil {
		return err
	}

	// Lock the balance row first, then append the movement. The NOWAIT lock
	// turns contention into an immediate Conflict the caller can resubmit.
	balance, err := s.repo.FindBalanceForUpdateTx(tx, m.ProductoID, m.Local, m.Lugar, m.EstadoMerc)
	switch {
	case err == nil:
		nueva := balance.Cantidad + m.Cantidad
		if nueva < 0 {
			return apierror.Conflict(fmt.Sprintf(
				"stock insuficiente: disponible %d, movimiento %d", balance.Cantidad, m.Cantidad))
		}
		if err := s.repo.UpdateBalanceTx(tx, balance.ID, nueva); err != nil {
			return apierror.Internal(err.Error())
		}
	case repository.IsNotFound(err):
		if m.Cantidad < 0 {
			return apierror.Conflict("stock insuficiente: no hay existencias en esa ubicacion")
		}
		nuevo := &model.Stock{
			ProductoID: m.ProductoID,
			Local:      m.Local,
			Lugar:      m.Lugar,
			EstadoMerc: m.EstadoMerc,
			Cantidad:   m.Cantidad,
		}
		if err := s.repo.CreateBalanceTx(tx, nuevo); err != nil {
			if repository.IsUniqueViolation(err) {
				return apierror.Conflict("la ubicacion de stock fue creada por otra operacion, reintente")
			}
			return apierror.Internal(err.Error())
		}
	case repository.IsLockNotAvailable(err):
		return apierror.Conflict("la ubicacion de stock esta siendo modificada por otra operacion")
	default:
		return apierror.Internal(err.Error())
	}

	if err := s.repo.CreateMovimientoTx(tx, m); err != nil {
		return apierror.Internal(err.Error())
	}
	return nil
}

func (s *stockService) PostMovimiento(ctx context.Context, actor string, req dto.PostMovimientoRequest) (*dto.MovimientoResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.Validation("producto_id invalido")
	}
	if _, err := s.productoRepo.FindByID(ctx, productoID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("producto no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}

	m := &model.MovimientoStock{
		ProductoID:    productoID,
		Local:         req.Local,
		Lugar:         req.Lugar,
		EstadoMerc:    req.EstadoMerc,
		Tipo:          req.Tipo,
		Cantidad:      req.Cantidad,
		CostoUnitNeto: req.CostoUnitNeto,
		RefTabla:      req.RefTabla,
		Notas:         req.Notas,
	}
	if req.RefID != nil {
		refID, err := uuid.Parse(*req.RefID)
		if err != nil {
			return nil, apierror.Validation("ref_id invalido")
		}
		m.RefID = &refID
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.AplicarMovimientoTx(tx, m)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:       actor,
		Entidad:     "movimientos_stock",
		EntidadID:   m.ID.String(),
		Accion:      "crear",
		Descripcion: fmt.Sprintf("Movimiento %s de %d unidades", m.Tipo, m.Cantidad),
	}})

	return movimientoToResponse(m), nil
}

// RevertirMovimiento writes the inverse AJUSTE referencing the original.
// The original row is never touched; a second reversal of the same movement
// is a Conflict.
func (s *stockService) RevertirMovimiento(ctx context.Context, id uuid.UUID, actor, motivo string) (*dto.MovimientoResponse, error) {
	var reversa *model.MovimientoStock

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		original, err := s.repo.FindMovimientoTx(tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound("movimiento no encontrado")
			}
			return apierror.Internal(err.Error())
		}

		yaRevertido, err := s.repo.ExisteReversaTx(tx, id)
		if err != nil {
			return apierror.Internal(err.Error())
		}
		if yaRevertido {
			return apierror.Conflict("el movimiento ya fue revertido")
		}

		refTabla := model.MovimientoStock{}.TableName()
		refID := original.ID
		reversa = &model.MovimientoStock{
			ProductoID:    original.ProductoID,
			Local:         original.Local,
			Lugar:         original.Lugar,
			EstadoMerc:    original.EstadoMerc,
			Tipo:          model.MovAjuste,
			Cantidad:      -original.Cantidad,
			CostoUnitNeto: original.CostoUnitNeto,
			RefTabla:      &refTabla,
			RefID:         &refID,
		}
		if motivo != "" {
			reversa.Notas = &motivo
		}
		return s.AplicarMovimientoTx(tx, reversa)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Flush(ctx, []audit.Evento{{
		Actor:       actor,
		Entidad:     "movimientos_stock",
		EntidadID:   reversa.ID.String(),
		Accion:      "revertir",
		Descripcion: fmt.Sprintf("Reversa del movimiento %s: %s", id, motivo),
	}})

	return movimientoToResponse(reversa), nil
}

// ActualizarNotas is the only in-place edit the ledger allows.
func (s *stockService) ActualizarNotas(ctx context.Context, id uuid.UUID, notas string) error {
	if _, err := s.repo.FindMovimiento(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound("movimiento no encontrado")
		}
		return apierror.Internal(err.Error())
	}
	if err := s.repo.UpdateNotas(ctx, id, notas); err != nil {
		return apierror.Internal(err.Error())
	}
	return nil
}

func (s *stockService) GetMovimiento(ctx context.Context, id uuid.UUID) (*dto.MovimientoResponse, error) {
	m, err := s.repo.FindMovimiento(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound("movimiento no encontrado")
		}
		return nil, apierror.Internal(err.Error())
	}
	return movimientoToResponse(m), nil
}

func (s *stockService) ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movimientos, total, err := s.repo.ListMovimientos(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	items := make([]dto.MovimientoResponse, 0, len(movimientos))
	for i := range movimientos {
		items = append(items, *movimientoToResponse(&movimientos[i]))
	}
	return &dto.MovimientoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *stockService) ListBalances(ctx context.Context, productoID uuid.UUID) ([]dto.StockResponse, error) {
	balances, err := s.repo.ListBalances(ctx, productoID)
	if err != nil {
		return nil, apierror.Internal(err.Error())
	}
	out := make([]dto.StockResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.StockResponse{
			ProductoID: b.ProductoID.String(),
			Local:      b.Local,
			Lugar:      b.Lugar,
			EstadoMerc: b.EstadoMerc,
			Cantidad:   b.Cantidad,
		})
	}
	return out, nil
}

func movimientoToResponse(m *model.MovimientoStock) *dto.MovimientoResponse {
	nombre := ""
	if m.Producto != nil {
		nombre = m.Producto.Nombre
	}
	var refID *string
	if m.RefID != nil {
		s := m.RefID.String()
		refID = &s
	}
	return &dto.MovimientoResponse{
		ID:            m.ID.String(),
		ProductoID:    m.ProductoID.String(),
		Producto:      nombre,
		Local:         m.Local,
		Lugar:         m.Lugar,
		EstadoMerc:    m.EstadoMerc,
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		CostoUnitNeto: m.CostoUnitNeto,
		RefTabla:      m.RefTabla,
		RefID:         refID,
		Notas:         m.Notas,
		CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
