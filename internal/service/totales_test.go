package service

import (
	"testing"

	"provex/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalcularLinea(t *testing.T) {
	t.Run("iva discriminado", func(t *testing.T) {
		lc := CalcularLinea(&model.CompraDetalle{
			Cantidad:      2,
			CostoUnitNeto: dec("100"),
			AlicuotaIVA:   dec("21"),
		})
		assert.Equal(t, "200.00", lc.Base.StringFixed(2))
		assert.Equal(t, "42.00", lc.IVA.StringFixed(2))
		assert.Equal(t, "242.00", lc.TotalLinea.StringFixed(2))
	})

	t.Run("iva incluido no se vuelve a sumar", func(t *testing.T) {
		lc := CalcularLinea(&model.CompraDetalle{
			Cantidad:      2,
			CostoUnitNeto: dec("100"),
			AlicuotaIVA:   dec("21"),
			IncluyeIVA:    true,
		})
		assert.True(t, lc.IVA.IsZero())
		assert.Equal(t, "200.00", lc.TotalLinea.StringFixed(2))
	})

	t.Run("descuento se aplica sobre la base", func(t *testing.T) {
		lc := CalcularLinea(&model.CompraDetalle{
			Cantidad:            1,
			CostoUnitNeto:       dec("100"),
			AlicuotaIVA:         dec("21"),
			DescuentoPorcentaje: dec("10"),
		})
		assert.Equal(t, "90.00", lc.Base.StringFixed(2))
		assert.Equal(t, "108.90", lc.TotalLinea.StringFixed(2))
	})

	t.Run("otros impuestos entran al total de linea", func(t *testing.T) {
		lc := CalcularLinea(&model.CompraDetalle{
			Cantidad:       1,
			CostoUnitNeto:  dec("100"),
			AlicuotaIVA:    dec("21"),
			OtrosImpuestos: dec("5.50"),
		})
		assert.Equal(t, "126.50", lc.TotalLinea.StringFixed(2))
	})
}

func TestCalcularAgregados(t *testing.T) {
	detalles := []model.CompraDetalle{
		{Cantidad: 2, CostoUnitNeto: dec("100"), AlicuotaIVA: dec("21")},
		{Cantidad: 1, CostoUnitNeto: dec("50"), AlicuotaIVA: dec("10.5")},
	}

	t.Run("solo lineas", func(t *testing.T) {
		agg := CalcularAgregados(detalles, nil)
		assert.Equal(t, "250.00", agg.SubtotalNeto.StringFixed(2))
		assert.Equal(t, "47.25", agg.IVATotal.StringFixed(2))
		assert.True(t, agg.PercepcionesTotal.IsZero())
		assert.True(t, agg.RetencionesTotal.IsZero())
		assert.Equal(t, "297.25", agg.Total.StringFixed(2))
	})

	t.Run("percepciones y retenciones suman al total", func(t *testing.T) {
		impuestos := []model.CompraImpuesto{
			{Tipo: model.ImpuestoPercepcion, Base: dec("250"), Monto: dec("10.00")},
			{Tipo: model.ImpuestoRetencion, Base: dec("250"), Monto: dec("5.00")},
		}
		agg := CalcularAgregados(detalles, impuestos)
		assert.Equal(t, "10.00", agg.PercepcionesTotal.StringFixed(2))
		assert.Equal(t, "5.00", agg.RetencionesTotal.StringFixed(2))
		assert.Equal(t, "312.25", agg.Total.StringFixed(2))
	})

	t.Run("la linea IVA ajusta el iva_total pero no duplica el total", func(t *testing.T) {
		impuestos := []model.CompraImpuesto{
			{Tipo: model.ImpuestoIVA, Base: dec("250"), Monto: dec("2.00")},
		}
		agg := CalcularAgregados(detalles, impuestos)
		assert.Equal(t, "49.25", agg.IVATotal.StringFixed(2))
		assert.Equal(t, "297.25", agg.Total.StringFixed(2))
	})

	t.Run("linea OTRO entra al total", func(t *testing.T) {
		impuestos := []model.CompraImpuesto{
			{Tipo: model.ImpuestoOtro, Base: dec("0"), Monto: dec("3.00")},
		}
		agg := CalcularAgregados(detalles, impuestos)
		assert.Equal(t, "300.25", agg.Total.StringFixed(2))
	})

	t.Run("idempotente", func(t *testing.T) {
		a := CalcularAgregados(detalles, nil)
		b := CalcularAgregados(detalles, nil)
		assert.True(t, a.Total.Equal(b.Total))
		assert.True(t, a.SubtotalNeto.Equal(b.SubtotalNeto))
	})

	t.Run("vacio da ceros", func(t *testing.T) {
		agg := CalcularAgregados(nil, nil)
		assert.True(t, agg.Total.IsZero())
		assert.True(t, agg.SubtotalNeto.IsZero())
	})
}

func TestCapacidadesEsquemaColumnas(t *testing.T) {
	agg := Agregados{
		SubtotalNeto:      dec("100.00"),
		IVATotal:          dec("21.00"),
		PercepcionesTotal: dec("3.00"),
		RetencionesTotal:  dec("1.00"),
		Total:             dec("125.00"),
	}

	t.Run("esquema completo escribe las cinco columnas", func(t *testing.T) {
		campos := TodasLasColumnas().Columnas(agg)
		assert.Len(t, campos, 5)
		assert.Contains(t, campos, "percepciones_total")
		assert.Contains(t, campos, "retenciones_total")
	})

	t.Run("esquema legado omite las columnas ausentes", func(t *testing.T) {
		campos := CapacidadesEsquema{}.Columnas(agg)
		assert.Len(t, campos, 3)
		assert.NotContains(t, campos, "percepciones_total")
		assert.NotContains(t, campos, "retenciones_total")
		assert.Contains(t, campos, "subtotal_neto")
		assert.Contains(t, campos, "iva_total")
		assert.Contains(t, campos, "total")
	})

	t.Run("esquema parcial", func(t *testing.T) {
		campos := CapacidadesEsquema{Percepciones: true}.Columnas(agg)
		assert.Contains(t, campos, "percepciones_total")
		assert.NotContains(t, campos, "retenciones_total")
	})
}

func TestDentroDeTolerancia(t *testing.T) {
	assert.True(t, DentroDeTolerancia(dec("100.00"), dec("100.00")))
	assert.True(t, DentroDeTolerancia(dec("100.01"), dec("100.00")))
	assert.True(t, DentroDeTolerancia(dec("99.99"), dec("100.00")))
	assert.False(t, DentroDeTolerancia(dec("100.02"), dec("100.00")))
	assert.False(t, DentroDeTolerancia(dec("99.98"), dec("100.00")))
}
