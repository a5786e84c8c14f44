package service

// In-memory repository stubs. Each one implements the full repository
// interface over plain maps; DB() returns nil so runTx calls the closure
// with a nil tx instead of opening a real transaction.

import (
	"context"
	"time"

	"provex/internal/dto"
	"provex/internal/model"
	"provex/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	_ repository.CompraRepository         = (*stubCompraRepo)(nil)
	_ repository.CuentaPagarRepository    = (*stubCuentaPagarRepo)(nil)
	_ repository.PagoRepository           = (*stubPagoRepo)(nil)
	_ repository.StockRepository          = (*stubStockRepo)(nil)
	_ repository.ProductoRepository       = (*stubProductoRepo)(nil)
	_ repository.ProveedorRepository      = (*stubProveedorRepo)(nil)
	_ repository.ImpuestoConfigRepository = (*stubImpuestoConfigRepo)(nil)
)

func errUniqueViolation() error { return &pgconn.PgError{Code: "23505"} }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// ── compras ───────────────────────────────────────────────────────────────────

type stubCompraRepo struct {
	compras   map[uuid.UUID]*model.Compra
	detalles  map[uuid.UUID]*model.CompraDetalle
	impuestos map[uuid.UUID]*model.CompraImpuesto
}

func newStubCompraRepo() *stubCompraRepo {
	return &stubCompraRepo{
		compras:   make(map[uuid.UUID]*model.Compra),
		detalles:  make(map[uuid.UUID]*model.CompraDetalle),
		impuestos: make(map[uuid.UUID]*model.CompraImpuesto),
	}
}

func (r *stubCompraRepo) DB() *gorm.DB { return nil }

func (r *stubCompraRepo) Create(ctx context.Context, c *model.Compra) error {
	ensureID(&c.ID)
	r.compras[c.ID] = c
	return nil
}

func (r *stubCompraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	c, ok := r.compras[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *c
	out.Detalles = nil
	out.Impuestos = nil
	for _, d := range r.detalles {
		if d.CompraID == id {
			out.Detalles = append(out.Detalles, *d)
		}
	}
	for _, i := range r.impuestos {
		if i.CompraID == id {
			out.Impuestos = append(out.Impuestos, *i)
		}
	}
	return &out, nil
}

func (r *stubCompraRepo) List(ctx context.Context, filter dto.CompraFilter) ([]model.Compra, int64, error) {
	var out []model.Compra
	for _, c := range r.compras {
		if filter.Estado != "" && filter.Estado != "all" && c.Estado != filter.Estado {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompraRepo) UpdateCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) error {
	return r.UpdateCamposTx(nil, id, campos)
}

func (r *stubCompraRepo) Delete(ctx context.Context, id uuid.UUID) error { return r.DeleteTx(nil, id) }

func (r *stubCompraRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	delete(r.compras, id)
	return nil
}

func (r *stubCompraRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	c, ok := r.compras[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCompraRepo) UpdateCamposTx(tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error {
	c, ok := r.compras[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range campos {
		switch k {
		case "estado":
			c.Estado = v.(string)
		case "moneda":
			c.Moneda = v.(string)
		case "subtotal_neto":
			c.SubtotalNeto = v.(decimal.Decimal)
		case "iva_total":
			c.IVATotal = v.(decimal.Decimal)
		case "percepciones_total":
			c.PercepcionesTotal = v.(decimal.Decimal)
		case "retenciones_total":
			c.RetencionesTotal = v.(decimal.Decimal)
		case "total":
			c.Total = v.(decimal.Decimal)
		case "tipo_comprobante":
			c.TipoComp, _ = v.(*string)
		case "punto_venta":
			c.PuntoVenta, _ = v.(*int)
		case "numero_comprobante":
			c.NumeroComp, _ = v.(*int)
		case "notas":
			c.Notas, _ = v.(*string)
		}
	}
	return nil
}

func (r *stubCompraRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	c, ok := r.compras[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Estado = estado
	return nil
}

func (r *stubCompraRepo) FindDetalleTx(tx *gorm.DB, id uuid.UUID) (*model.CompraDetalle, error) {
	d, ok := r.detalles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubCompraRepo) ListDetallesTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraDetalle, error) {
	var out []model.CompraDetalle
	for _, d := range r.detalles {
		if d.CompraID == compraID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubCompraRepo) CreateDetalleTx(tx *gorm.DB, d *model.CompraDetalle) error {
	ensureID(&d.ID)
	r.detalles[d.ID] = d
	return nil
}

func (r *stubCompraRepo) SaveDetalleTx(tx *gorm.DB, d *model.CompraDetalle) error {
	r.detalles[d.ID] = d
	return nil
}

func (r *stubCompraRepo) DeleteDetalleTx(tx *gorm.DB, id uuid.UUID) error {
	delete(r.detalles, id)
	return nil
}

func (r *stubCompraRepo) DeleteDetallesByCompraTx(tx *gorm.DB, compraID uuid.UUID) error {
	for id, d := range r.detalles {
		if d.CompraID == compraID {
			delete(r.detalles, id)
		}
	}
	return nil
}

func (r *stubCompraRepo) FindImpuestoTx(tx *gorm.DB, id uuid.UUID) (*model.CompraImpuesto, error) {
	i, ok := r.impuestos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *stubCompraRepo) ListImpuestosTx(tx *gorm.DB, compraID uuid.UUID) ([]model.CompraImpuesto, error) {
	var out []model.CompraImpuesto
	for _, i := range r.impuestos {
		if i.CompraID == compraID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *stubCompraRepo) CreateImpuestoTx(tx *gorm.DB, i *model.CompraImpuesto) error {
	ensureID(&i.ID)
	r.impuestos[i.ID] = i
	return nil
}

func (r *stubCompraRepo) SaveImpuestoTx(tx *gorm.DB, i *model.CompraImpuesto) error {
	r.impuestos[i.ID] = i
	return nil
}

func (r *stubCompraRepo) DeleteImpuestoTx(tx *gorm.DB, id uuid.UUID) error {
	delete(r.impuestos, id)
	return nil
}

func (r *stubCompraRepo) DeleteImpuestosByCompraTx(tx *gorm.DB, compraID uuid.UUID) error {
	for id, i := range r.impuestos {
		if i.CompraID == compraID {
			delete(r.impuestos, id)
		}
	}
	return nil
}

// ── cuentas por pagar ─────────────────────────────────────────────────────────

type stubCuentaPagarRepo struct {
	cuentas map[uuid.UUID]*model.CuentaPagar
}

func newStubCuentaPagarRepo() *stubCuentaPagarRepo {
	return &stubCuentaPagarRepo{cuentas: make(map[uuid.UUID]*model.CuentaPagar)}
}

func (r *stubCuentaPagarRepo) DB() *gorm.DB { return nil }

func (r *stubCuentaPagarRepo) Create(ctx context.Context, c *model.CuentaPagar) error {
	return r.CreateTx(nil, c)
}

func (r *stubCuentaPagarRepo) CreateTx(tx *gorm.DB, c *model.CuentaPagar) error {
	for _, existing := range r.cuentas {
		if existing.CompraID == c.CompraID {
			return errUniqueViolation()
		}
	}
	ensureID(&c.ID)
	r.cuentas[c.ID] = c
	return nil
}

func (r *stubCuentaPagarRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaPagar, error) {
	c, ok := r.cuentas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCuentaPagarRepo) FindByCompraID(ctx context.Context, compraID uuid.UUID) (*model.CuentaPagar, error) {
	return r.FindByCompraForUpdateTx(nil, compraID)
}

func (r *stubCuentaPagarRepo) List(ctx context.Context, filter dto.CuentaPagarFilter) ([]model.CuentaPagar, int64, error) {
	var out []model.CuentaPagar
	for _, c := range r.cuentas {
		if filter.Estado != "" && filter.Estado != "all" && c.Estado != filter.Estado {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCuentaPagarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.cuentas, id)
	return nil
}

func (r *stubCuentaPagarRepo) DeleteByCompraIDTx(tx *gorm.DB, compraID uuid.UUID) error {
	for id, c := range r.cuentas {
		if c.CompraID == compraID {
			delete(r.cuentas, id)
		}
	}
	return nil
}

func (r *stubCuentaPagarRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CuentaPagar, error) {
	c, ok := r.cuentas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCuentaPagarRepo) FindByCompraForUpdateTx(tx *gorm.DB, compraID uuid.UUID) (*model.CuentaPagar, error) {
	for _, c := range r.cuentas {
		if c.CompraID == compraID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCuentaPagarRepo) UpdateCamposTx(tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error {
	c, ok := r.cuentas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range campos {
		switch k {
		case "monto_total":
			c.MontoTotal = v.(decimal.Decimal)
		case "saldo":
			c.Saldo = v.(decimal.Decimal)
		case "estado":
			c.Estado = v.(string)
		case "fecha_vencimiento":
			c.FechaVencimiento = v.(time.Time)
		}
	}
	return nil
}

// ── pagos ─────────────────────────────────────────────────────────────────────

type stubPagoRepo struct {
	pagos        map[uuid.UUID]*model.PagoProveedor
	aplicaciones map[uuid.UUID]*model.PagoAplicacion
}

func newStubPagoRepo() *stubPagoRepo {
	return &stubPagoRepo{
		pagos:        make(map[uuid.UUID]*model.PagoProveedor),
		aplicaciones: make(map[uuid.UUID]*model.PagoAplicacion),
	}
}

func (r *stubPagoRepo) DB() *gorm.DB { return nil }

func (r *stubPagoRepo) Create(ctx context.Context, p *model.PagoProveedor) error {
	ensureID(&p.ID)
	r.pagos[p.ID] = p
	return nil
}

func (r *stubPagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PagoProveedor, error) {
	p, ok := r.pagos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *p
	out.Aplicaciones = nil
	for _, a := range r.aplicaciones {
		if a.PagoID == id {
			out.Aplicaciones = append(out.Aplicaciones, *a)
		}
	}
	return &out, nil
}

func (r *stubPagoRepo) ListByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.PagoProveedor, error) {
	var out []model.PagoProveedor
	for _, p := range r.pagos {
		if p.ProveedorID == proveedorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPagoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.pagos, id)
	return nil
}

func (r *stubPagoRepo) FindTx(tx *gorm.DB, id uuid.UUID) (*model.PagoProveedor, error) {
	p, ok := r.pagos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPagoRepo) FindAplicacionTx(tx *gorm.DB, pagoID, compraID uuid.UUID) (*model.PagoAplicacion, error) {
	for _, a := range r.aplicaciones {
		if a.PagoID == pagoID && a.CompraID == compraID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPagoRepo) CreateAplicacionTx(tx *gorm.DB, a *model.PagoAplicacion) error {
	for _, existing := range r.aplicaciones {
		if existing.PagoID == a.PagoID && existing.CompraID == a.CompraID {
			return errUniqueViolation()
		}
	}
	ensureID(&a.ID)
	r.aplicaciones[a.ID] = a
	return nil
}

func (r *stubPagoRepo) SaveAplicacionTx(tx *gorm.DB, a *model.PagoAplicacion) error {
	r.aplicaciones[a.ID] = a
	return nil
}

func (r *stubPagoRepo) DeleteAplicacionTx(tx *gorm.DB, id uuid.UUID) error {
	delete(r.aplicaciones, id)
	return nil
}

func (r *stubPagoRepo) ListAplicacionesPorPago(ctx context.Context, pagoID uuid.UUID) ([]model.PagoAplicacion, error) {
	var out []model.PagoAplicacion
	for _, a := range r.aplicaciones {
		if a.PagoID == pagoID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubPagoRepo) SumAplicadoPorPagoTx(tx *gorm.DB, pagoID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range r.aplicaciones {
		if a.PagoID == pagoID {
			sum = sum.Add(a.MontoAplicado)
		}
	}
	return sum, nil
}

func (r *stubPagoRepo) SumAplicadoPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range r.aplicaciones {
		if a.CompraID == compraID {
			sum = sum.Add(a.MontoAplicado)
		}
	}
	return sum, nil
}

func (r *stubPagoRepo) CountAplicacionesPorCompraTx(tx *gorm.DB, compraID uuid.UUID) (int64, error) {
	var n int64
	for _, a := range r.aplicaciones {
		if a.CompraID == compraID {
			n++
		}
	}
	return n, nil
}

// ── stock ─────────────────────────────────────────────────────────────────────

type stubStockRepo struct {
	movimientos []*model.MovimientoStock
	balances    []*model.Stock
}

func newStubStockRepo() *stubStockRepo { return &stubStockRepo{} }

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	ensureID(&m.ID)
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *stubStockRepo) FindMovimiento(ctx context.Context, id uuid.UUID) (*model.MovimientoStock, error) {
	return r.FindMovimientoTx(nil, id)
}

func (r *stubStockRepo) FindMovimientoTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoStock, error) {
	for _, m := range r.movimientos {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStockRepo) ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		if filter.ProductoID != "" && m.ProductoID.String() != filter.ProductoID {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *stubStockRepo) UpdateNotas(ctx context.Context, id uuid.UUID, notas string) error {
	m, err := r.FindMovimientoTx(nil, id)
	if err != nil {
		return err
	}
	m.Notas = &notas
	return nil
}

func (r *stubStockRepo) ExisteReversaTx(tx *gorm.DB, movimientoID uuid.UUID) (bool, error) {
	ref := model.MovimientoStock{}.TableName()
	for _, m := range r.movimientos {
		if m.RefTabla != nil && *m.RefTabla == ref && m.RefID != nil && *m.RefID == movimientoID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubStockRepo) ListMovimientosByRefTx(tx *gorm.DB, refTabla string, refID uuid.UUID) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.RefTabla != nil && *m.RefTabla == refTabla && m.RefID != nil && *m.RefID == refID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubStockRepo) FindBalanceForUpdateTx(tx *gorm.DB, productoID uuid.UUID, local, lugar, estado string) (*model.Stock, error) {
	for _, b := range r.balances {
		if b.ProductoID == productoID && b.Local == local && b.Lugar == lugar && b.EstadoMerc == estado {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStockRepo) CreateBalanceTx(tx *gorm.DB, s *model.Stock) error {
	ensureID(&s.ID)
	r.balances = append(r.balances, s)
	return nil
}

func (r *stubStockRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	for _, b := range r.balances {
		if b.ID == id {
			b.Cantidad = cantidad
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubStockRepo) FindBalance(ctx context.Context, productoID uuid.UUID, local, lugar, estado string) (*model.Stock, error) {
	return r.FindBalanceForUpdateTx(nil, productoID, local, lugar, estado)
}

func (r *stubStockRepo) ListBalances(ctx context.Context, productoID uuid.UUID) ([]model.Stock, error) {
	var out []model.Stock
	for _, b := range r.balances {
		if b.ProductoID == productoID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// ── productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos   map[uuid.UUID]*model.Producto
	historial   []*model.HistorialCosto
	componentes map[uuid.UUID]*model.ComboComponente
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos:   make(map[uuid.UUID]*model.Producto),
		componentes: make(map[uuid.UUID]*model.ComboComponente),
	}
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

func (r *stubProductoRepo) Create(ctx context.Context, p *model.Producto) error {
	ensureID(&p.ID)
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubProductoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *p
	return &out, nil
}

func (r *stubProductoRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(ctx context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = true
	return nil
}

func (r *stubProductoRepo) UpdateCostoTx(tx *gorm.DB, id uuid.UUID, costo decimal.Decimal) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CostoUnitNeto = costo
	return nil
}

func (r *stubProductoRepo) CreateHistorialCostoTx(tx *gorm.DB, h *model.HistorialCosto) error {
	ensureID(&h.ID)
	r.historial = append(r.historial, h)
	return nil
}

func (r *stubProductoRepo) ListHistorialCosto(ctx context.Context, productoID uuid.UUID) ([]model.HistorialCosto, error) {
	var out []model.HistorialCosto
	for _, h := range r.historial {
		if h.ProductoID == productoID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) CreateComponente(ctx context.Context, c *model.ComboComponente) error {
	ensureID(&c.ID)
	r.componentes[c.ID] = c
	return nil
}

func (r *stubProductoRepo) ListComponentes(ctx context.Context, comboID uuid.UUID) ([]model.ComboComponente, error) {
	var out []model.ComboComponente
	for _, c := range r.componentes {
		if c.ComboID == comboID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) DeleteComponente(ctx context.Context, id uuid.UUID) error {
	delete(r.componentes, id)
	return nil
}

// ── proveedores ───────────────────────────────────────────────────────────────

type stubProveedorRepo struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{proveedores: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	ensureID(&p.ID)
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProveedorRepo) FindByCUIT(ctx context.Context, cuit string) (*model.Proveedor, error) {
	for _, p := range r.proveedores {
		if p.CUIT == cuit {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProveedorRepo) List(ctx context.Context) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, p := range r.proveedores {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	r.proveedores[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.proveedores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProveedorRepo) CountCompras(ctx context.Context, proveedorID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *stubProveedorRepo) CreateContacto(ctx context.Context, c *model.ContactoProveedor) error {
	ensureID(&c.ID)
	return nil
}

func (r *stubProveedorRepo) DeleteContacto(ctx context.Context, id uuid.UUID) error { return nil }

// ── impuestos config ──────────────────────────────────────────────────────────

type stubImpuestoConfigRepo struct {
	configs map[uuid.UUID]*model.ImpuestoConfig
}

func newStubImpuestoConfigRepo() *stubImpuestoConfigRepo {
	return &stubImpuestoConfigRepo{configs: make(map[uuid.UUID]*model.ImpuestoConfig)}
}

func (r *stubImpuestoConfigRepo) Create(ctx context.Context, c *model.ImpuestoConfig) error {
	ensureID(&c.ID)
	r.configs[c.ID] = c
	return nil
}

func (r *stubImpuestoConfigRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ImpuestoConfig, error) {
	c, ok := r.configs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubImpuestoConfigRepo) FindActivoByCodigo(ctx context.Context, codigo string) (*model.ImpuestoConfig, error) {
	return r.FindActivoByCodigoTx(nil, codigo)
}

func (r *stubImpuestoConfigRepo) FindActivoByCodigoTx(tx *gorm.DB, codigo string) (*model.ImpuestoConfig, error) {
	for _, c := range r.configs {
		if c.Codigo == codigo && c.Activo {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubImpuestoConfigRepo) List(ctx context.Context) ([]model.ImpuestoConfig, error) {
	var out []model.ImpuestoConfig
	for _, c := range r.configs {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubImpuestoConfigRepo) Update(ctx context.Context, c *model.ImpuestoConfig) error {
	r.configs[c.ID] = c
	return nil
}

func (r *stubImpuestoConfigRepo) Desactivar(ctx context.Context, id uuid.UUID) error {
	c, ok := r.configs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

// ── fixture wiring ────────────────────────────────────────────────────────────

// testEnv wires every service over the in-memory stubs, with no auditor and
// no dispatcher.
type testEnv struct {
	compras     *stubCompraRepo
	cuentas     *stubCuentaPagarRepo
	pagos       *stubPagoRepo
	stock       *stubStockRepo
	productos   *stubProductoRepo
	proveedores *stubProveedorRepo
	impuestos   *stubImpuestoConfigRepo

	compraSvc CompraService
	cxpSvc    CuentaPagarService
	pagoSvc   PagoService
	stockSvc  StockService
}

func newTestEnv() *testEnv {
	e := &testEnv{
		compras:     newStubCompraRepo(),
		cuentas:     newStubCuentaPagarRepo(),
		pagos:       newStubPagoRepo(),
		stock:       newStubStockRepo(),
		productos:   newStubProductoRepo(),
		proveedores: newStubProveedorRepo(),
		impuestos:   newStubImpuestoConfigRepo(),
	}
	e.cxpSvc = NewCuentaPagarService(e.cuentas, e.compras, e.pagos, nil)
	e.stockSvc = NewStockService(e.stock, e.productos, nil)
	e.pagoSvc = NewPagoService(e.pagos, e.compras, e.proveedores, e.cuentas, e.cxpSvc, nil)
	e.compraSvc = NewCompraService(
		e.compras, e.proveedores, e.productos, e.impuestos, e.pagos, e.stock,
		e.cxpSvc, e.stockSvc, TodasLasColumnas(), nil, nil,
	)
	return e
}

func (e *testEnv) seedProveedor() *model.Proveedor {
	p := &model.Proveedor{ID: uuid.New(), RazonSocial: "Distribuidora Sur SA", CUIT: "30-71234567-8", Activo: true}
	e.proveedores.proveedores[p.ID] = p
	return p
}

func (e *testEnv) seedProducto(costo string) *model.Producto {
	p := &model.Producto{
		ID:            uuid.New(),
		CodigoBarras:  uuid.NewString(),
		Nombre:        "Yerba 1kg",
		CostoUnitNeto: decimal.RequireFromString(costo),
		AlicuotaIVA:   decimal.NewFromInt(21),
		Activo:        true,
	}
	e.productos.productos[p.ID] = p
	return p
}

func (e *testEnv) seedCompra(proveedorID uuid.UUID, estado string) *model.Compra {
	c := &model.Compra{
		ID:          uuid.New(),
		Canal:       "manual",
		ProveedorID: proveedorID,
		Estado:      estado,
		Moneda:      "ARS",
	}
	e.compras.compras[c.ID] = c
	return c
}

func (e *testEnv) seedDetalle(compraID uuid.UUID, productoID *uuid.UUID, cantidad int, costo string) *model.CompraDetalle {
	d := &model.CompraDetalle{
		ID:            uuid.New(),
		CompraID:      compraID,
		ProductoID:    productoID,
		Cantidad:      cantidad,
		CostoUnitNeto: decimal.RequireFromString(costo),
		AlicuotaIVA:   decimal.NewFromInt(21),
	}
	d.TotalLinea = CalcularLinea(d).TotalLinea
	e.compras.detalles[d.ID] = d
	return d
}

func (e *testEnv) seedCuenta(compraID, proveedorID uuid.UUID, total string) *model.CuentaPagar {
	monto := decimal.RequireFromString(total)
	c := &model.CuentaPagar{
		ID:               uuid.New(),
		CompraID:         compraID,
		ProveedorID:      proveedorID,
		MontoTotal:       monto,
		Saldo:            monto,
		Estado:           model.CxPPendiente,
		FechaEmision:     time.Now(),
		FechaVencimiento: time.Now().AddDate(0, 1, 0),
	}
	e.cuentas.cuentas[c.ID] = c
	return c
}

func (e *testEnv) seedPago(proveedorID uuid.UUID, monto string) *model.PagoProveedor {
	p := &model.PagoProveedor{
		ID:          uuid.New(),
		ProveedorID: proveedorID,
		MontoTotal:  decimal.RequireFromString(monto),
		Fecha:       time.Now(),
		Medio:       "transferencia",
	}
	e.pagos.pagos[p.ID] = p
	return p
}
