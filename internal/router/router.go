package router

import (
	"time"

	"provex/internal/config"
	"provex/internal/handler"
	"provex/internal/infra"
	"provex/internal/middleware"
	"provex/internal/repository"
	"provex/internal/service"
	"provex/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	impuestoRepo := repository.NewImpuestoConfigRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	cuentaPagarRepo := repository.NewCuentaPagarRepository(db)
	pagoRepo := repository.NewPagoRepository(db)
	stockRepo := repository.NewStockRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)
	auditor := service.NewAuditor(dispatcher)

	// Aggregate columns present in the deployed schema
	caps := service.CapacidadesEsquema{
		Percepciones: cfg.ColumnaPercepciones,
		Retenciones:  cfg.ColumnaRetenciones,
	}

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	productoSvc := service.NewProductoService(productoRepo, auditor)
	impuestoSvc := service.NewImpuestoConfigService(impuestoRepo)
	stockSvc := service.NewStockService(stockRepo, productoRepo, auditor)
	cxpSvc := service.NewCuentaPagarService(cuentaPagarRepo, compraRepo, pagoRepo, auditor)
	pagoSvc := service.NewPagoService(pagoRepo, compraRepo, proveedorRepo, cuentaPagarRepo, cxpSvc, auditor)
	compraSvc := service.NewCompraService(
		compraRepo, proveedorRepo, productoRepo, impuestoRepo, pagoRepo, stockRepo,
		cxpSvc, stockSvc, caps, auditor, dispatcher,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	impuestosH := handler.NewImpuestosHandler(impuestoSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	cuentasH := handler.NewCuentasPagarHandler(cxpSvc)
	pagosH := handler.NewPagosHandler(pagoSvc)
	stockH := handler.NewStockHandler(stockSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — read only, no auth required
	r.GET("/v1/precio/:barcode", consultaH.GetPrecioPorBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: comprador, supervisor, administrador — declared per-endpoint
		lectura := middleware.RequireRole("comprador", "supervisor", "administrador")
		confirmacion := middleware.RequireRole("supervisor", "administrador")
		admin := middleware.RequireRole("administrador")

		compras := v1.Group("/compras")
		{
			compras.POST("", lectura, comprasH.Crear)
			compras.GET("", lectura, comprasH.Listar)
			compras.GET("/:id", lectura, comprasH.Get)
			compras.PUT("/:id", lectura, comprasH.Actualizar)
			compras.DELETE("/:id", confirmacion, comprasH.Eliminar)

			compras.POST("/:id/detalles", lectura, comprasH.AgregarDetalle)
			compras.PUT("/:id/detalles/:detalle_id", lectura, comprasH.ActualizarDetalle)
			compras.DELETE("/:id/detalles/:detalle_id", lectura, comprasH.EliminarDetalle)

			compras.POST("/:id/impuestos", lectura, comprasH.AgregarImpuesto)
			compras.PUT("/:id/impuestos/:impuesto_id", lectura, comprasH.ActualizarImpuesto)
			compras.DELETE("/:id/impuestos/:impuesto_id", lectura, comprasH.EliminarImpuesto)

			// Confirming and voiding move stock and money — supervisor and up
			compras.POST("/:id/confirmar", confirmacion, comprasH.Confirmar)
			compras.POST("/:id/anular", confirmacion, comprasH.Anular)

			compras.GET("/:id/cuenta", lectura, cuentasH.GetPorCompra)
		}

		cuentas := v1.Group("/cuentas-pagar")
		{
			cuentas.GET("", lectura, cuentasH.Listar)
			cuentas.GET("/:id", lectura, cuentasH.Get)
			cuentas.POST("", confirmacion, cuentasH.CrearManual)
			cuentas.PATCH("/:id/total", confirmacion, cuentasH.AjustarTotal)
			cuentas.PATCH("/:id/vencimiento", confirmacion, cuentasH.AjustarVencimiento)
			cuentas.DELETE("/:id", admin, cuentasH.Eliminar)
		}

		pagos := v1.Group("/pagos", confirmacion)
		{
			pagos.POST("", pagosH.Crear)
			pagos.GET("", pagosH.ListarPorProveedor)
			pagos.GET("/:id", pagosH.Get)
			pagos.DELETE("/:id", pagosH.Eliminar)

			pagos.POST("/:id/aplicaciones", pagosH.Aplicar)
			pagos.PUT("/:id/aplicaciones/:compra_id", pagosH.ActualizarAplicacion)
			pagos.DELETE("/:id/aplicaciones/:compra_id", pagosH.QuitarAplicacion)
		}

		stock := v1.Group("/stock")
		{
			stock.GET("/movimientos", lectura, stockH.ListarMovimientos)
			stock.GET("/movimientos/:id", lectura, stockH.GetMovimiento)
			stock.POST("/movimientos", confirmacion, stockH.PostMovimiento)
			stock.POST("/movimientos/:id/revertir", confirmacion, stockH.Revertir)
			stock.PATCH("/movimientos/:id/notas", confirmacion, stockH.ActualizarNotas)
			stock.GET("/balances/:producto_id", lectura, stockH.ListarBalances)
		}

		v1.GET("/productos", lectura, productosH.Listar)
		v1.GET("/productos/:id", lectura, productosH.ObtenerPorID)
		v1.GET("/productos/:id/historial-costos", lectura, productosH.HistorialCosto)
		v1.GET("/productos/:id/componentes", lectura, productosH.ListarComponentes)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.POST("/:id/componentes", productosH.AgregarComponente)
			prods.DELETE("/:id/componentes/:componente_id", productosH.QuitarComponente)
		}

		v1.GET("/proveedores", lectura, proveedoresH.Listar)
		v1.GET("/proveedores/:id", lectura, proveedoresH.ObtenerPorID)
		prov := v1.Group("/proveedores", admin)
		{
			prov.POST("", proveedoresH.Crear)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Desactivar)
			prov.POST("/:id/contactos", proveedoresH.AgregarContacto)
			prov.DELETE("/:id/contactos/:contacto_id", proveedoresH.QuitarContacto)
		}

		v1.GET("/categorias", lectura, categoriasH.Listar)
		categorias := v1.Group("/categorias", admin)
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		v1.GET("/impuestos", lectura, impuestosH.Listar)
		impuestos := v1.Group("/impuestos", admin)
		{
			impuestos.POST("", impuestosH.Crear)
			impuestos.PUT("/:id", impuestosH.Actualizar)
			impuestos.DELETE("/:id", impuestosH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
