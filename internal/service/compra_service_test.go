package service

import (
	"context"
	"testing"

	"provex/internal/apierror"
	"provex/internal/dto"
	"provex/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCrearCompra(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()

	t.Run("defaults", func(t *testing.T) {
		resp, err := e.compraSvc.Crear(context.Background(), "tester", dto.CrearCompraRequest{
			ProveedorID: proveedor.ID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, model.CompraBorrador, resp.Estado)
		assert.Equal(t, "manual", resp.Canal)
		assert.Equal(t, "ARS", resp.Moneda)
		assert.True(t, resp.Total.IsZero())
	})

	t.Run("proveedor inexistente", func(t *testing.T) {
		_, err := e.compraSvc.Crear(context.Background(), "tester", dto.CrearCompraRequest{
			ProveedorID: uuid.NewString(),
		})
		assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
	})

	t.Run("punto de venta sin numero", func(t *testing.T) {
		_, err := e.compraSvc.Crear(context.Background(), "tester", dto.CrearCompraRequest{
			ProveedorID: proveedor.ID.String(),
			PuntoVenta:  ptr(3),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
		assert.ErrorContains(t, err, "ambos o ninguno")
	})
}

func TestAgregarDetalleRecalculaAgregados(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	producto := e.seedProducto("100")
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)

	resp, err := e.compraSvc.AgregarDetalle(context.Background(), compra.ID, "tester", dto.CrearDetalleRequest{
		ProductoID:    ptr(producto.ID.String()),
		Cantidad:      2,
		CostoUnitNeto: dec("100"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Detalles, 1)
	assert.Equal(t, "242.00", resp.Detalles[0].TotalLinea.StringFixed(2))
	assert.Equal(t, "21", resp.Detalles[0].AlicuotaIVA.String(), "alicuota por defecto")
	assert.Equal(t, "200.00", resp.SubtotalNeto.StringFixed(2))
	assert.Equal(t, "42.00", resp.IVATotal.StringFixed(2))
	assert.Equal(t, "242.00", resp.Total.StringFixed(2))
}

func TestAgregarDetalleValidaciones(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)

	t.Run("linea libre sin descripcion", func(t *testing.T) {
		_, err := e.compraSvc.AgregarDetalle(context.Background(), compra.ID, "tester", dto.CrearDetalleRequest{
			Cantidad:      1,
			CostoUnitNeto: dec("10"),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
		assert.ErrorContains(t, err, "necesita descripcion")
	})

	t.Run("producto inactivo", func(t *testing.T) {
		inactivo := e.seedProducto("50")
		inactivo.Activo = false
		_, err := e.compraSvc.AgregarDetalle(context.Background(), compra.ID, "tester", dto.CrearDetalleRequest{
			ProductoID:    ptr(inactivo.ID.String()),
			Cantidad:      1,
			CostoUnitNeto: dec("50"),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
		assert.ErrorContains(t, err, "inactivo")
	})

	t.Run("descuento fuera de rango", func(t *testing.T) {
		_, err := e.compraSvc.AgregarDetalle(context.Background(), compra.ID, "tester", dto.CrearDetalleRequest{
			Descripcion:         ptr("flete"),
			Cantidad:            1,
			CostoUnitNeto:       dec("10"),
			DescuentoPorcentaje: dec("101"),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	})
}

func TestMutacionesSoloEnBorrador(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraConfirmada)

	_, err := e.compraSvc.AgregarDetalle(context.Background(), compra.ID, "tester", dto.CrearDetalleRequest{
		Descripcion:   ptr("flete"),
		Cantidad:      1,
		CostoUnitNeto: dec("10"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
	assert.ErrorContains(t, err, "ya no se puede modificar")

	err = e.compraSvc.Eliminar(context.Background(), compra.ID, "tester")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
}

func TestActualizarYEliminarDetalle(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
	detalle := e.seedDetalle(compra.ID, nil, 2, "100")
	detalle.Descripcion = ptr("cajas")

	resp, err := e.compraSvc.ActualizarDetalle(context.Background(), compra.ID, detalle.ID, "tester",
		dto.ActualizarDetalleRequest{Cantidad: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, "363.00", resp.Total.StringFixed(2))

	t.Run("linea de otra compra", func(t *testing.T) {
		otra := e.seedCompra(proveedor.ID, model.CompraBorrador)
		_, err := e.compraSvc.ActualizarDetalle(context.Background(), otra.ID, detalle.ID, "tester",
			dto.ActualizarDetalleRequest{Cantidad: ptr(1)})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
		assert.ErrorContains(t, err, "no pertenece")
	})

	resp, err = e.compraSvc.EliminarDetalle(context.Background(), compra.ID, detalle.ID, "tester")
	require.NoError(t, err)
	assert.Empty(t, resp.Detalles)
	assert.True(t, resp.Total.IsZero())
}

func TestAgregarImpuesto(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
	e.seedDetalle(compra.ID, nil, 2, "100")

	e.impuestos.configs[uuid.New()] = &model.ImpuestoConfig{
		ID:       uuid.New(),
		Codigo:   "PERC-IIBB",
		Nombre:   "Percepcion IIBB",
		Tipo:     model.ImpuestoPercepcion,
		Alicuota: dec("0.035"),
		Activo:   true,
	}

	t.Run("monto derivado del catalogo", func(t *testing.T) {
		resp, err := e.compraSvc.AgregarImpuesto(context.Background(), compra.ID, "tester", dto.CrearImpuestoRequest{
			Tipo:   model.ImpuestoPercepcion,
			Codigo: ptr("perc-iibb"), // se normaliza antes de resolver
			Base:   dec("200"),
		})
		require.NoError(t, err)
		require.Len(t, resp.Impuestos, 1)
		assert.Equal(t, "7.00", resp.Impuestos[0].Monto.StringFixed(2))
		assert.Equal(t, "7.00", resp.PercepcionesTotal.StringFixed(2))
		assert.Equal(t, "249.00", resp.Total.StringFixed(2))
	})

	t.Run("codigo no configurado", func(t *testing.T) {
		_, err := e.compraSvc.AgregarImpuesto(context.Background(), compra.ID, "tester", dto.CrearImpuestoRequest{
			Tipo:   model.ImpuestoPercepcion,
			Codigo: ptr("PERC-TUC"),
			Base:   dec("200"),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
	})

	t.Run("tipo desconocido", func(t *testing.T) {
		_, err := e.compraSvc.AgregarImpuesto(context.Background(), compra.ID, "tester", dto.CrearImpuestoRequest{
			Tipo: "SELLOS",
			Base: dec("200"),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	})

	t.Run("sin monto ni alicuota queda en cero", func(t *testing.T) {
		resp, err := e.compraSvc.AgregarImpuesto(context.Background(), compra.ID, "tester", dto.CrearImpuestoRequest{
			Tipo: model.ImpuestoRetencion,
			Base: dec("200"),
		})
		require.NoError(t, err)
		linea := resp.Impuestos[len(resp.Impuestos)-1]
		assert.True(t, linea.Monto.IsZero(), "monto %s", linea.Monto)
		assert.Equal(t, "249.00", resp.Total.StringFixed(2))

		_, err = e.compraSvc.EliminarImpuesto(context.Background(), compra.ID, uuid.MustParse(linea.ID), "tester")
		require.NoError(t, err)
	})

	t.Run("alicuota es fraccion", func(t *testing.T) {
		_, err := e.compraSvc.AgregarImpuesto(context.Background(), compra.ID, "tester", dto.CrearImpuestoRequest{
			Tipo:     model.ImpuestoRetencion,
			Base:     dec("200"),
			Alicuota: ptr(dec("3.5")),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
		assert.ErrorContains(t, err, "entre 0 y 1")
	})
}

func TestActualizarYEliminarImpuesto(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
	e.seedDetalle(compra.ID, nil, 2, "100")

	resp, err := e.compraSvc.AgregarImpuesto(context.Background(), compra.ID, "tester", dto.CrearImpuestoRequest{
		Tipo:  model.ImpuestoRetencion,
		Base:  dec("200"),
		Monto: ptr(dec("4.00")),
	})
	require.NoError(t, err)
	require.Len(t, resp.Impuestos, 1)
	impuestoID := uuid.MustParse(resp.Impuestos[0].ID)
	assert.Equal(t, "246.00", resp.Total.StringFixed(2))

	resp, err = e.compraSvc.ActualizarImpuesto(context.Background(), compra.ID, impuestoID, "tester",
		dto.ActualizarImpuestoRequest{Monto: ptr(dec("6.00"))})
	require.NoError(t, err)
	assert.Equal(t, "6.00", resp.RetencionesTotal.StringFixed(2))
	assert.Equal(t, "248.00", resp.Total.StringFixed(2))

	resp, err = e.compraSvc.EliminarImpuesto(context.Background(), compra.ID, impuestoID, "tester")
	require.NoError(t, err)
	assert.Empty(t, resp.Impuestos)
	assert.Equal(t, "242.00", resp.Total.StringFixed(2))
}

func TestConfirmarCompra(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	producto := e.seedProducto("90")
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
	e.seedDetalle(compra.ID, &producto.ID, 5, "100")

	resp, err := e.compraSvc.Confirmar(context.Background(), compra.ID, "tester", dto.ConfirmarCompraRequest{
		FechaVencimiento: "2026-10-01",
		Local:            "central",
		Lugar:            "deposito",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CompraConfirmada, resp.Estado)
	assert.Equal(t, "605.00", resp.Total.StringFixed(2))

	// abre la cuenta por pagar por el total derivado
	cuenta, err := e.cuentas.FindByCompraID(context.Background(), compra.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CxPPendiente, cuenta.Estado)
	assert.Equal(t, "605.00", cuenta.MontoTotal.StringFixed(2))

	// asienta la entrada de stock referenciando la compra
	balance, err := e.stock.FindBalance(context.Background(), producto.ID, "central", "deposito", "")
	require.NoError(t, err)
	assert.Equal(t, 5, balance.Cantidad)
	movs, err := e.stock.ListMovimientosByRefTx(nil, "compras", compra.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovCompra, movs[0].Tipo)

	// actualiza el ultimo costo y deja historial
	assert.Equal(t, "100", producto.CostoUnitNeto.String())
	require.Len(t, e.productos.historial, 1)
	historial := e.productos.historial[0]
	assert.Equal(t, "90", historial.CostoAntes.String())
	assert.Equal(t, "100", historial.CostoDespues.String())
	assert.Equal(t, "compra_confirmada", historial.Motivo)

	t.Run("segunda confirmacion es estado invalido", func(t *testing.T) {
		_, err := e.compraSvc.Confirmar(context.Background(), compra.ID, "tester", dto.ConfirmarCompraRequest{
			FechaVencimiento: "2026-10-01",
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
	})
}

func TestConfirmarCompraSinLineas(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)

	_, err := e.compraSvc.Confirmar(context.Background(), compra.ID, "tester", dto.ConfirmarCompraRequest{
		FechaVencimiento: "2026-10-01",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.ErrorContains(t, err, "sin lineas")
}

func TestConfirmarCompraTotalDeclarado(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	producto := e.seedProducto("100")

	confirmar := func(declarado string) error {
		compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
		e.seedDetalle(compra.ID, &producto.ID, 2, "100") // total derivado 242.00
		_, err := e.compraSvc.Confirmar(context.Background(), compra.ID, "tester", dto.ConfirmarCompraRequest{
			TotalDeclarado:   ptr(decimal.RequireFromString(declarado)),
			FechaVencimiento: "2026-10-01",
		})
		return err
	}

	assert.NoError(t, confirmar("242.00"))
	assert.NoError(t, confirmar("242.01"), "dentro de la tolerancia de un centavo")
	assert.NoError(t, confirmar("241.99"))

	err := confirmar("242.50")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.ErrorContains(t, err, "no coincide con el total calculado")
}

func TestConfirmarCompraNoRepiteHistorialConMismoCosto(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	producto := e.seedProducto("100")
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
	e.seedDetalle(compra.ID, &producto.ID, 1, "100")

	_, err := e.compraSvc.Confirmar(context.Background(), compra.ID, "tester", dto.ConfirmarCompraRequest{
		FechaVencimiento: "2026-10-01",
	})
	require.NoError(t, err)
	assert.Empty(t, e.productos.historial, "costo sin cambio no genera historial")
}

func TestAnularCompraConfirmada(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	producto := e.seedProducto("100")
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
	e.seedDetalle(compra.ID, &producto.ID, 5, "100")

	_, err := e.compraSvc.Confirmar(context.Background(), compra.ID, "tester", dto.ConfirmarCompraRequest{
		FechaVencimiento: "2026-10-01",
		Local:            "central",
		Lugar:            "deposito",
	})
	require.NoError(t, err)

	resp, err := e.compraSvc.Anular(context.Background(), compra.ID, "tester", dto.AnularCompraRequest{
		Motivo: "factura mal cargada",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CompraAnulada, resp.Estado)

	// el stock vuelve a cero con una reversa, el asiento original queda
	balance, err := e.stock.FindBalance(context.Background(), producto.ID, "central", "deposito", "")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cantidad)
	assert.Len(t, e.stock.movimientos, 2)

	// la cuenta por pagar desaparece
	_, err = e.cuentas.FindByCompraID(context.Background(), compra.ID)
	require.Error(t, err)

	t.Run("segunda anulacion es estado invalido", func(t *testing.T) {
		_, err := e.compraSvc.Anular(context.Background(), compra.ID, "tester", dto.AnularCompraRequest{Motivo: "otra vez"})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindInvalidState))
	})
}

func TestAnularCompraConPagosAplicados(t *testing.T) {
	f := newPagoFixture("1000.00", "600.00")
	_, err := f.aplicar("100.00")
	require.NoError(t, err)

	_, err = f.env.compraSvc.Anular(context.Background(), f.compra.ID, "tester", dto.AnularCompraRequest{
		Motivo: "error",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "pagos aplicados")
	assert.Equal(t, model.CompraConfirmada, f.compra.Estado)
}

func TestAnularBorrador(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)

	resp, err := e.compraSvc.Anular(context.Background(), compra.ID, "tester", dto.AnularCompraRequest{
		Motivo: "cargada por error",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CompraAnulada, resp.Estado)
	assert.Empty(t, e.stock.movimientos)
}

func TestEliminarBorrador(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)
	detalle := e.seedDetalle(compra.ID, nil, 1, "10")

	require.NoError(t, e.compraSvc.Eliminar(context.Background(), compra.ID, "tester"))

	_, err := e.compraSvc.Get(context.Background(), compra.ID)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
	_, err = e.compras.FindDetalleTx(nil, detalle.ID)
	assert.Error(t, err, "los hijos se eliminan con el borrador")
}

func TestActualizarCompra(t *testing.T) {
	e := newTestEnv()
	proveedor := e.seedProveedor()
	compra := e.seedCompra(proveedor.ID, model.CompraBorrador)

	resp, err := e.compraSvc.Actualizar(context.Background(), compra.ID, "tester", dto.ActualizarCompraRequest{
		TipoComp:   ptr("FA"),
		PuntoVenta: ptr(3),
		NumeroComp: ptr(112233),
		Moneda:     ptr("USD"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.TipoComp)
	assert.Equal(t, "FA", *resp.TipoComp)
	assert.Equal(t, "USD", resp.Moneda)

	t.Run("documento incompleto", func(t *testing.T) {
		otra := e.seedCompra(proveedor.ID, model.CompraBorrador)
		_, err := e.compraSvc.Actualizar(context.Background(), otra.ID, "tester", dto.ActualizarCompraRequest{
			NumeroComp: ptr(99),
		})
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	})
}
