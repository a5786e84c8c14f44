package service

import (
	"context"
	"testing"
	"time"

	"provex/internal/apierror"
	"provex/internal/dto"
	"provex/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaldoYEstado(t *testing.T) {
	cases := []struct {
		name     string
		total    string
		aplicado string
		saldo    string
		estado   string
	}{
		{"sin aplicaciones", "1000", "0", "1000.00", model.CxPPendiente},
		{"aplicacion parcial", "1000", "300", "700.00", model.CxPParcial},
		{"aplicacion completa", "1000", "1000", "0.00", model.CxPCancelado},
		{"sobreaplicacion clampea a cero", "1000", "1000.01", "0.00", model.CxPCancelado},
		{"resto de centavos sigue parcial", "1000", "999.99", "0.01", model.CxPParcial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			saldo, estado := SaldoYEstado(dec(tc.total), dec(tc.aplicado))
			assert.Equal(t, tc.saldo, saldo.StringFixed(2))
			assert.Equal(t, tc.estado, estado)
		})
	}
}

func TestCrearPorConfirmacion(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	vencimiento := time.Now().AddDate(0, 1, 0)

	t.Run("compra con total abre pendiente", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
		compra.Total = dec("500.00")

		cuenta, err := e.cxpSvc.CrearPorConfirmacionTx(nil, compra, vencimiento)
		require.NoError(t, err)
		assert.Equal(t, model.CxPPendiente, cuenta.Estado)
		assert.True(t, cuenta.Saldo.Equal(compra.Total))
		assert.Equal(t, compra.ID, cuenta.CompraID)
		assert.Equal(t, proveedor.ID, cuenta.ProveedorID)
	})

	t.Run("compra de total cero nace cancelada", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)

		cuenta, err := e.cxpSvc.CrearPorConfirmacionTx(nil, compra, vencimiento)
		require.NoError(t, err)
		assert.Equal(t, model.CxPCancelado, cuenta.Estado)
	})

	t.Run("segunda cuenta para la misma compra es conflicto", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
		compra.Total = dec("100.00")

		_, err := e.cxpSvc.CrearPorConfirmacionTx(nil, compra, vencimiento)
		require.NoError(t, err)
		_, err = e.cxpSvc.CrearPorConfirmacionTx(nil, compra, vencimiento)
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	})
}

func TestSyncPorCompra(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
	cuenta := e.seedCuenta(compra.ID, proveedor.ID, "1000.00")
	pago := e.seedPago(proveedor.ID, "1000.00")

	// sin aplicaciones: pendiente
	got, err := e.cxpSvc.SyncPorCompraTx(nil, compra.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CxPPendiente, got.Estado)

	e.pagos.aplicaciones[uuid.New()] = &model.PagoAplicacion{
		ID: uuid.New(), PagoID: pago.ID, CompraID: compra.ID, MontoAplicado: dec("400.00"),
	}
	got, err = e.cxpSvc.SyncPorCompraTx(nil, compra.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CxPParcial, got.Estado)
	assert.Equal(t, "600.00", got.Saldo.StringFixed(2))

	e.pagos.aplicaciones[uuid.New()] = &model.PagoAplicacion{
		ID: uuid.New(), PagoID: pago.ID, CompraID: compra.ID, MontoAplicado: dec("600.00"),
	}
	got, err = e.cxpSvc.SyncPorCompraTx(nil, compra.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CxPCancelado, got.Estado)
	assert.True(t, got.Saldo.IsZero())
	assert.Equal(t, model.CxPCancelado, cuenta.Estado, "el estado persiste en la fila")
}

func TestSyncPorCompraSinCuenta(t *testing.T) {
	e := newTestEnv()
	_, err := e.cxpSvc.SyncPorCompraTx(nil, uuid.New())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestCrearManual(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()

	valida := func(compraID uuid.UUID) dto.CrearCuentaManualRequest {
		return dto.CrearCuentaManualRequest{
			CompraID:         compraID.String(),
			MontoTotal:       dec("250.00"),
			FechaEmision:     "2026-08-01",
			FechaVencimiento: "2026-09-01",
		}
	}

	t.Run("ok", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
		resp, err := e.cxpSvc.CrearManual(context.Background(), "tester", valida(compra.ID))
		require.NoError(t, err)
		assert.Equal(t, model.CxPPendiente, resp.Estado)
		assert.Equal(t, "250.00", resp.Saldo.StringFixed(2))
		assert.Equal(t, "2026-09-01", resp.FechaVencimiento)
	})

	t.Run("compra en borrador no admite cuenta", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
		_, err := e.cxpSvc.CrearManual(context.Background(), "tester", valida(compra.ID))
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
	})

	t.Run("vencimiento anterior a emision", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
		req := valida(compra.ID)
		req.FechaVencimiento = "2026-07-01"
		_, err := e.cxpSvc.CrearManual(context.Background(), "tester", req)
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	})

	t.Run("monto no positivo", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
		req := valida(compra.ID)
		req.MontoTotal = dec("0")
		_, err := e.cxpSvc.CrearManual(context.Background(), "tester", req)
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	})

	t.Run("compra ya con cuenta", func(t *testing.T) {
		compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
		e.seedCuenta(compra.ID, proveedor.ID, "100.00")
		_, err := e.cxpSvc.CrearManual(context.Background(), "tester", valida(compra.ID))
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	})

	t.Run("compra inexistente", func(t *testing.T) {
		_, err := e.cxpSvc.CrearManual(context.Background(), "tester", valida(uuid.New()))
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
	})
}

func TestAjustarTotal(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
	cuenta := e.seedCuenta(compra.ID, proveedor.ID, "1000.00")
	pago := e.seedPago(proveedor.ID, "1000.00")
	e.pagos.aplicaciones[uuid.New()] = &model.PagoAplicacion{
		ID: uuid.New(), PagoID: pago.ID, CompraID: compra.ID, MontoAplicado: dec("300.00"),
	}

	t.Run("sube el total y rederiva el saldo", func(t *testing.T) {
		resp, err := e.cxpSvc.AjustarTotal(context.Background(), cuenta.ID, "tester", dto.AjustarTotalRequest{
			MontoTotal: dec("1200.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, "1200.00", resp.MontoTotal.StringFixed(2))
		assert.Equal(t, "900.00", resp.Saldo.StringFixed(2))
		assert.Equal(t, model.CxPParcial, resp.Estado)
	})

	t.Run("bajar al monto aplicado cancela la cuenta", func(t *testing.T) {
		resp, err := e.cxpSvc.AjustarTotal(context.Background(), cuenta.ID, "tester", dto.AjustarTotalRequest{
			MontoTotal: dec("300.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.CxPCancelado, resp.Estado)
		assert.True(t, resp.Saldo.IsZero())
	})

	t.Run("no puede quedar debajo de lo aplicado", func(t *testing.T) {
		_, err := e.cxpSvc.AjustarTotal(context.Background(), cuenta.ID, "tester", dto.AjustarTotalRequest{
			MontoTotal: dec("299.99"),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
		assert.ErrorContains(t, err, "menor a lo ya aplicado")
	})

	t.Run("cuenta inexistente", func(t *testing.T) {
		_, err := e.cxpSvc.AjustarTotal(context.Background(), uuid.New(), "tester", dto.AjustarTotalRequest{
			MontoTotal: dec("100.00"),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
	})
}

func TestAjustarVencimiento(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
	cuenta := e.seedCuenta(compra.ID, proveedor.ID, "500.00")
	cuenta.FechaEmision = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	resp, err := e.cxpSvc.AjustarVencimiento(context.Background(), cuenta.ID, dto.AjustarVencimientoRequest{
		FechaVencimiento: "2026-10-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", resp.FechaVencimiento)

	_, err = e.cxpSvc.AjustarVencimiento(context.Background(), cuenta.ID, dto.AjustarVencimientoRequest{
		FechaVencimiento: "2026-07-31",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	_, err = e.cxpSvc.AjustarVencimiento(context.Background(), cuenta.ID, dto.AjustarVencimientoRequest{
		FechaVencimiento: "31/07/2026",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestEliminarCuenta(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)
	cuenta := e.seedCuenta(compra.ID, proveedor.ID, "500.00")
	pago := e.seedPago(proveedor.ID, "500.00")

	aplicacionID := uuid.New()
	e.pagos.aplicaciones[aplicacionID] = &model.PagoAplicacion{
		ID: aplicacionID, PagoID: pago.ID, CompraID: compra.ID, MontoAplicado: dec("100.00"),
	}

	err := e.cxpSvc.Eliminar(context.Background(), cuenta.ID, "tester")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "pagos aplicados")

	delete(e.pagos.aplicaciones, aplicacionID)
	require.NoError(t, e.cxpSvc.Eliminar(context.Background(), cuenta.ID, "tester"))

	_, err = e.cxpSvc.Get(context.Background(), cuenta.ID)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
