package infra

import (
	"fmt"

	"provex/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes, CHECK constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates or updates the full schema. Also used by tests that
// spin up a throwaway postgres container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Categoria{},
		&model.Proveedor{},
		&model.ContactoProveedor{},
		&model.Producto{},
		&model.ComboComponente{},
		&model.ImpuestoConfig{},
		&model.Compra{},
		&model.CompraDetalle{},
		&model.CompraImpuesto{},
		&model.CuentaPagar{},
		&model.PagoProveedor{},
		&model.PagoAplicacion{},
		&model.MovimientoStock{},
		&model.Stock{},
		&model.HistorialCosto{},
		&model.Auditoria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// El saldo de una CxP nunca sale del rango [0, monto_total]; el motor
		// lo garantiza, el CHECK es el backstop a nivel esquema.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_cxp_saldo_rango') THEN
		    ALTER TABLE cuentas_pagar
		      ADD CONSTRAINT chk_cxp_saldo_rango CHECK (saldo >= 0 AND saldo <= monto_total);
		  END IF;
		END $$`,
		// Un movimiento de stock jamas registra cantidad cero.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_mov_cantidad_no_cero') THEN
		    ALTER TABLE movimientos_stock
		      ADD CONSTRAINT chk_mov_cantidad_no_cero CHECK (cantidad <> 0);
		  END IF;
		END $$`,
		// El balance derivado no puede quedar negativo.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_no_negativo') THEN
		    ALTER TABLE stock
		      ADD CONSTRAINT chk_stock_no_negativo CHECK (cantidad >= 0);
		  END IF;
		END $$`,
		// Partial index for the open-payables listing.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cxp_abiertas') THEN
		    CREATE INDEX idx_cxp_abiertas
		        ON cuentas_pagar (fecha_vencimiento)
		        WHERE estado <> 'cancelado';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
