package infra

// pdf.go — orden de compra PDF generation using go-pdf/fpdf.
// Generates an A4 purchase order with supplier data, line table
// (description, quantity, unit cost, line total) and the four aggregate
// amounts. The output file is saved to storagePath/oc_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"provex/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateOrdenCompraPDF renders the purchase order for a confirmed Compra.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateOrdenCompraPDF(compra *model.Compra, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("oc_%s.pdf", compra.ID.String())
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Orden de Compra", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, compra.CreatedAt.Format("02/01/2006"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Supplier block ───────────────────────────────────────────────────────
	if compra.Proveedor != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, compra.Proveedor.RazonSocial, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, "CUIT "+compra.Proveedor.CUIT, "", 1, "L", false, 0, "")
	}
	if compra.TipoComp != nil && compra.PuntoVenta != nil && compra.NumeroComp != nil {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5,
			fmt.Sprintf("Comprobante %s %04d-%08d", *compra.TipoComp, *compra.PuntoVenta, *compra.NumeroComp),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Line table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.46 // description
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.20 // unit cost
	col4 := contentW * 0.22 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Detalle", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Costo unit.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Total linea", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range compra.Detalles {
		descr := ""
		switch {
		case d.Producto != nil:
			descr = d.Producto.Nombre
		case d.Descripcion != nil:
			descr = *d.Descripcion
		}
		if len(descr) > 48 {
			descr = descr[:47] + "…"
		}
		pdf.CellFormat(col1, 6, descr, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", d.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+d.CostoUnitNeto.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+d.TotalLinea.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Aggregates ───────────────────────────────────────────────────────────
	rows := []struct {
		label string
		monto string
	}{
		{"Subtotal neto:", compra.SubtotalNeto.StringFixed(2)},
		{"IVA:", compra.IVATotal.StringFixed(2)},
	}
	if !compra.PercepcionesTotal.IsZero() {
		rows = append(rows, struct{ label, monto string }{"Percepciones:", compra.PercepcionesTotal.StringFixed(2)})
	}
	if !compra.RetencionesTotal.IsZero() {
		rows = append(rows, struct{ label, monto string }{"Retenciones:", compra.RetencionesTotal.StringFixed(2)})
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		pdf.CellFormat(col1+col2+col3, 6, r.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+r.monto, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 8, "TOTAL ("+compra.Moneda+"):", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 8, "$"+compra.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
