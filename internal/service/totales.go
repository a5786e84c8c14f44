package service

// totales.go — pure arithmetic for purchase line and header aggregates.
// Everything here is side-effect free; persistence happens in the services
// that call it, inside the same transaction as the triggering mutation.

import (
	"provex/internal/model"

	"github.com/shopspring/decimal"
)

// ToleranciaTotal is the maximum difference accepted between a caller-declared
// comprobante total and the derived total. The legacy system tolerated "close"
// totals without documenting how close; here the slack is an explicit constant.
var ToleranciaTotal = decimal.NewFromFloat(0.01)

var cien = decimal.NewFromInt(100)

// round2 rounds to 2 decimals, half away from zero (decimal.Round semantics).
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// LineaCalculada carries the derived amounts of one purchase line.
type LineaCalculada struct {
	Base       decimal.Decimal
	IVA        decimal.Decimal
	TotalLinea decimal.Decimal
}

// CalcularLinea derives base, IVA and total for one line:
//
//	base        = cantidad * costo_unit_neto * (1 - descuento/100)
//	iva         = incluye_iva ? 0 : base * alicuota/100
//	total_linea = round2(base + iva + otros_impuestos)
//
// Base and IVA stay unrounded — they only get rounded once aggregated, so
// repeated recomputes cannot drift.
func CalcularLinea(d *model.CompraDetalle) LineaCalculada {
	cantidad := decimal.NewFromInt(int64(d.Cantidad))
	base := cantidad.Mul(d.CostoUnitNeto).
		Mul(decimal.NewFromInt(1).Sub(d.DescuentoPorcentaje.Div(cien)))

	iva := decimal.Zero
	if !d.IncluyeIVA {
		iva = base.Mul(d.AlicuotaIVA).Div(cien)
	}

	return LineaCalculada{
		Base:       base,
		IVA:        iva,
		TotalLinea: round2(base.Add(iva).Add(d.OtrosImpuestos)),
	}
}

// Agregados are the four derived header amounts plus the subtotal.
type Agregados struct {
	SubtotalNeto      decimal.Decimal
	IVATotal          decimal.Decimal
	PercepcionesTotal decimal.Decimal
	RetencionesTotal  decimal.Decimal
	Total             decimal.Decimal
}

// CalcularAgregados folds all lines and header tax lines into the purchase
// aggregates. Idempotent: recomputing over the same rows yields the same
// result.
func CalcularAgregados(detalles []model.CompraDetalle, impuestos []model.CompraImpuesto) Agregados {
	var sumBase, sumIVA, sumLineas decimal.Decimal
	for i := range detalles {
		lc := CalcularLinea(&detalles[i])
		sumBase = sumBase.Add(lc.Base)
		sumIVA = sumIVA.Add(lc.IVA)
		sumLineas = sumLineas.Add(lc.TotalLinea)
	}

	var ivaImp, percepciones, retenciones, otros decimal.Decimal
	for _, imp := range impuestos {
		switch imp.Tipo {
		case model.ImpuestoIVA:
			ivaImp = ivaImp.Add(imp.Monto)
		case model.ImpuestoPercepcion:
			percepciones = percepciones.Add(imp.Monto)
		case model.ImpuestoRetencion:
			retenciones = retenciones.Add(imp.Monto)
		case model.ImpuestoOtro:
			otros = otros.Add(imp.Monto)
		}
	}

	percepciones = round2(percepciones)
	retenciones = round2(retenciones)

	return Agregados{
		SubtotalNeto:      round2(sumBase),
		IVATotal:          round2(sumIVA.Add(ivaImp)),
		PercepcionesTotal: percepciones,
		RetencionesTotal:  retenciones,
		Total:             round2(sumLineas.Add(percepciones).Add(retenciones).Add(otros)),
	}
}

// CapacidadesEsquema declares which aggregate columns exist in the deployed
// schema. Older installations migrated from the legacy system may lack the
// percepciones/retenciones columns; the recompute writes only what is
// declared instead of introspecting information_schema at runtime.
type CapacidadesEsquema struct {
	Percepciones bool
	Retenciones  bool
}

// TodasLasColumnas is the descriptor for a fully migrated schema.
func TodasLasColumnas() CapacidadesEsquema {
	return CapacidadesEsquema{Percepciones: true, Retenciones: true}
}

// Columnas maps the aggregates onto the update set the schema supports.
func (c CapacidadesEsquema) Columnas(a Agregados) map[string]interface{} {
	campos := map[string]interface{}{
		"subtotal_neto": a.SubtotalNeto,
		"iva_total":     a.IVATotal,
		"total":         a.Total,
	}
	if c.Percepciones {
		campos["percepciones_total"] = a.PercepcionesTotal
	}
	if c.Retenciones {
		campos["retenciones_total"] = a.RetencionesTotal
	}
	return campos
}

// DentroDeTolerancia reports whether a caller-declared total is acceptably
// close to the derived one.
func DentroDeTolerancia(declarado, derivado decimal.Decimal) bool {
	return declarado.Sub(derivado).Abs().LessThanOrEqual(ToleranciaTotal)
}
