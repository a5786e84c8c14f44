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

func postCompra(t *testing.T, e *testEnv, productoID uuid.UUID, cantidad int) *dto.MovimientoResponse {
	t.Helper()
	resp, err := e.stockSvc.PostMovimiento(context.Background(), "tester", dto.PostMovimientoRequest{
		ProductoID: productoID.String(),
		Local:      "central",
		Lugar:      "deposito",
		Tipo:       model.MovCompra,
		Cantidad:   cantidad,
	})
	require.NoError(t, err)
	return resp
}

func TestPostMovimientoCreaBalance(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")

	resp := postCompra(t, e, producto.ID, 5)
	assert.Equal(t, model.MovCompra, resp.Tipo)
	assert.Equal(t, 5, resp.Cantidad)

	balance, err := e.stock.FindBalance(context.Background(), producto.ID, "central", "deposito", "")
	require.NoError(t, err)
	assert.Equal(t, 5, balance.Cantidad)
	assert.Len(t, e.stock.movimientos, 1)
}

func TestPostMovimientoAcumulaSobreBalanceExistente(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")

	postCompra(t, e, producto.ID, 5)
	postCompra(t, e, producto.ID, 3)

	balance, err := e.stock.FindBalance(context.Background(), producto.ID, "central", "deposito", "")
	require.NoError(t, err)
	assert.Equal(t, 8, balance.Cantidad)
	assert.Len(t, e.stock.movimientos, 2)
}

func TestPostMovimientoSalidaSinExistencias(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")

	_, err := e.stockSvc.PostMovimiento(context.Background(), "tester", dto.PostMovimientoRequest{
		ProductoID: producto.ID.String(),
		Local:      "central",
		Lugar:      "deposito",
		Tipo:       model.MovVenta,
		Cantidad:   -1,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "no hay existencias")
	assert.Empty(t, e.stock.movimientos, "un movimiento rechazado no se registra")
}

func TestPostMovimientoStockInsuficiente(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")
	postCompra(t, e, producto.ID, 3)

	_, err := e.stockSvc.PostMovimiento(context.Background(), "tester", dto.PostMovimientoRequest{
		ProductoID: producto.ID.String(),
		Local:      "central",
		Lugar:      "deposito",
		Tipo:       model.MovVenta,
		Cantidad:   -5,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "stock insuficiente: disponible 3, movimiento -5")

	balance, err := e.stock.FindBalance(context.Background(), producto.ID, "central", "deposito", "")
	require.NoError(t, err)
	assert.Equal(t, 3, balance.Cantidad)
}

func TestPostMovimientoValidaciones(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")

	base := dto.PostMovimientoRequest{
		ProductoID: producto.ID.String(),
		Local:      "central",
		Lugar:      "deposito",
	}

	cases := []struct {
		name   string
		mutate func(r *dto.PostMovimientoRequest)
		msg    string
	}{
		{
			name:   "cantidad cero",
			mutate: func(r *dto.PostMovimientoRequest) { r.Tipo = model.MovAjuste; r.Cantidad = 0 },
			msg:    "no puede ser cero",
		},
		{
			name:   "tipo desconocido",
			mutate: func(r *dto.PostMovimientoRequest) { r.Tipo = "REGALO"; r.Cantidad = 1 },
			msg:    "tipo de movimiento desconocido",
		},
		{
			name:   "entrada con cantidad negativa",
			mutate: func(r *dto.PostMovimientoRequest) { r.Tipo = model.MovCompra; r.Cantidad = -2 },
			msg:    "debe tener cantidad positiva",
		},
		{
			name:   "salida con cantidad positiva",
			mutate: func(r *dto.PostMovimientoRequest) { r.Tipo = model.MovVenta; r.Cantidad = 2 },
			msg:    "debe tener cantidad negativa",
		},
		{
			name: "ref incompleta",
			mutate: func(r *dto.PostMovimientoRequest) {
				tabla := "compras"
				r.Tipo = model.MovAjuste
				r.Cantidad = 1
				r.RefTabla = &tabla
			},
			msg: "ambos o ninguno",
		},
		{
			name: "ref_tabla vacia",
			mutate: func(r *dto.PostMovimientoRequest) {
				tabla := ""
				id := uuid.NewString()
				r.Tipo = model.MovAjuste
				r.Cantidad = 1
				r.RefTabla = &tabla
				r.RefID = &id
			},
			msg: "ref_tabla no puede estar vacia",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := e.stockSvc.PostMovimiento(context.Background(), "tester", req)
			require.Error(t, err)
			assert.True(t, apierror.IsKind(err, apierror.KindValidation))
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestPostMovimientoCostoNegativo(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")
	costo := decimal.NewFromInt(-1)

	_, err := e.stockSvc.PostMovimiento(context.Background(), "tester", dto.PostMovimientoRequest{
		ProductoID:    producto.ID.String(),
		Tipo:          model.MovCompra,
		Cantidad:      1,
		CostoUnitNeto: &costo,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestPostMovimientoProductoInexistente(t *testing.T) {
	e := newTestEnv()

	_, err := e.stockSvc.PostMovimiento(context.Background(), "tester", dto.PostMovimientoRequest{
		ProductoID: uuid.NewString(),
		Tipo:       model.MovCompra,
		Cantidad:   1,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestRevertirMovimiento(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")
	original := postCompra(t, e, producto.ID, 5)
	originalID := uuid.MustParse(original.ID)

	reversa, err := e.stockSvc.RevertirMovimiento(context.Background(), originalID, "tester", "carga duplicada")
	require.NoError(t, err)

	assert.Equal(t, model.MovAjuste, reversa.Tipo)
	assert.Equal(t, -5, reversa.Cantidad)
	require.NotNil(t, reversa.RefTabla)
	assert.Equal(t, "movimientos_stock", *reversa.RefTabla)
	require.NotNil(t, reversa.RefID)
	assert.Equal(t, original.ID, *reversa.RefID)
	require.NotNil(t, reversa.Notas)
	assert.Equal(t, "carga duplicada", *reversa.Notas)

	balance, err := e.stock.FindBalance(context.Background(), producto.ID, "central", "deposito", "")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cantidad)

	// el original queda intacto
	orig, err := e.stock.FindMovimiento(context.Background(), originalID)
	require.NoError(t, err)
	assert.Equal(t, 5, orig.Cantidad)
}

func TestRevertirMovimientoDosVeces(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")
	original := postCompra(t, e, producto.ID, 5)
	originalID := uuid.MustParse(original.ID)

	_, err := e.stockSvc.RevertirMovimiento(context.Background(), originalID, "tester", "error")
	require.NoError(t, err)

	_, err = e.stockSvc.RevertirMovimiento(context.Background(), originalID, "tester", "error")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "ya fue revertido")
}

func TestRevertirMovimientoInexistente(t *testing.T) {
	e := newTestEnv()
	_, err := e.stockSvc.RevertirMovimiento(context.Background(), uuid.New(), "tester", "x")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestActualizarNotas(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")
	mov := postCompra(t, e, producto.ID, 2)
	movID := uuid.MustParse(mov.ID)

	require.NoError(t, e.stockSvc.ActualizarNotas(context.Background(), movID, "recuento fisico"))

	m, err := e.stock.FindMovimiento(context.Background(), movID)
	require.NoError(t, err)
	require.NotNil(t, m.Notas)
	assert.Equal(t, "recuento fisico", *m.Notas)

	err = e.stockSvc.ActualizarNotas(context.Background(), uuid.New(), "x")
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestListBalancesPorProducto(t *testing.T) {
	e := newTestEnv()
	producto := e.seedProducto("100")
	postCompra(t, e, producto.ID, 5)

	_, err := e.stockSvc.PostMovimiento(context.Background(), "tester", dto.PostMovimientoRequest{
		ProductoID: producto.ID.String(),
		Local:      "sucursal",
		Lugar:      "gondola",
		Tipo:       model.MovCompra,
		Cantidad:   2,
	})
	require.NoError(t, err)

	balances, err := e.stockSvc.ListBalances(context.Background(), producto.ID)
	require.NoError(t, err)
	assert.Len(t, balances, 2)
}
