// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
	"distrisur/internal/domain/inventory"
	"distrisur/internal/infrastructure/notification"
	"distrisur/internal/infrastructure/storage/postgres"
	"distrisur/internal/infrastructure/storage/postgres/catalog_repo"
	"distrisur/internal/infrastructure/storage/postgres/inventory_repo"
	"distrisur/pkg/logger"
)

type demoProduct struct {
	sku       string
	name      string
	category  string
	basePrice string
	wholesale string

	// opening stock
	batchNumber string
	quantity    int64
	shelfDays   int // 0 means no expiration
}

var demoProducts = []demoProduct{
	{"AGUA-500", "Agua Mineral 500ml", "agua", "350.00", "290.00", "L-2408-01", 480, 540},
	{"AGUA-2L", "Agua Mineral 2L", "agua", "700.00", "580.00", "L-2408-02", 240, 540},
	{"GAS-COLA-15", "Gaseosa Cola 1.5L", "gaseosa", "1450.00", "1190.00", "L-2407-11", 360, 270},
	{"GAS-LIMA-15", "Gaseosa Lima Limón 1.5L", "gaseosa", "1380.00", "1140.00", "L-2407-12", 180, 270},
	{"CERV-RUBIA", "Cerveza Rubia 473ml", "cerveza", "1900.00", "1520.00", "L-2406-03", 600, 180},
	{"CERV-NEGRA", "Cerveza Negra 473ml", "cerveza", "2100.00", "1680.00", "L-2406-04", 240, 180},
	{"JUGO-NAR-1L", "Jugo de Naranja 1L", "jugo", "1250.00", "990.00", "L-2408-20", 120, 45},
	{"ENERG-250", "Bebida Energética 250ml", "energetica", "2300.00", "1840.00", "L-2405-07", 144, 365},
	{"SIFON-2L", "Sifón de Soda 2L", "soda", "950.00", "760.00", "S-RETORNO", 96, 0},
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	productRepo := catalog_repo.NewProductRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	ledgerRepo := inventory_repo.NewLedgerRepo(txManager)

	productService := product.NewService(productRepo)
	warehouseService := warehouse.NewService(warehouseRepo)
	ledger := inventory.NewService(
		ledgerRepo,
		productRepo,
		warehouseService,
		txManager,
		notification.NewLogNotifier(),
		inventory.DefaultLowStockThreshold,
	)

	depot, err := warehouseService.EnsureDefault(ctx)
	if err != nil {
		log.Fatalw("failed to ensure default depot", "error", err)
	}
	log.Infow("depot ready", "id", depot.ID, "name", depot.Name)

	seeded := 0
	for _, d := range demoProducts {
		p, err := seedProduct(ctx, productService, productRepo, d)
		if err != nil {
			log.Fatalw("failed to seed product", "sku", d.sku, "error", err)
		}
		if p == nil {
			log.Infow("product already exists, skipping", "sku", d.sku)
			continue
		}

		var expiration *time.Time
		if d.shelfDays > 0 {
			exp := time.Now().UTC().AddDate(0, 0, d.shelfDays)
			expiration = &exp
		}

		if _, err := ledger.Receive(ctx, inventory.ReceiveInput{
			ProductID:      p.ID,
			WarehouseID:    &depot.ID,
			BatchNumber:    d.batchNumber,
			LocationZone:   "A1",
			Quantity:       d.quantity,
			ExpirationDate: expiration,
		}); err != nil {
			log.Fatalw("failed to seed opening stock", "sku", d.sku, "error", err)
		}
		seeded++
	}

	log.Infow("seeding complete", "products", seeded, "skipped", len(demoProducts)-seeded)
}

// seedProduct creates the product unless it already exists. It returns nil
// without error when the SKU is already present, so reruns are harmless.
func seedProduct(ctx context.Context, svc *product.Service, repo product.Repository, d demoProduct) (*product.Product, error) {
	if _, err := repo.GetBySKU(ctx, d.sku); err == nil {
		return nil, nil
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	basePrice, err := types.NewMoneyFromString(d.basePrice)
	if err != nil {
		return nil, err
	}
	wholesale, err := types.NewMoneyFromString(d.wholesale)
	if err != nil {
		return nil, err
	}

	p := product.NewProduct(d.sku, d.name, basePrice)
	p.Category = d.category
	p.WholesalePrice = &wholesale

	if err := svc.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
