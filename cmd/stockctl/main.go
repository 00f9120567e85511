// stockctl herramienta operativa del libro de stock.
//
// Uso:
//
//	stockctl import [-latin1] [-actor nombre] saldos.csv
//	stockctl reconcile SKU [SKU...]
//
// import crea los productos que falten y registra un movimiento opening_balance por fila.
// Con SEQUENCE_BACKEND=redis la importación toma un lock para que dos ejecuciones no
// carguen el mismo archivo a la vez. reconcile termina con código 2 si algún producto
// tiene descuadre entre stock y movimientos.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/application/usecase"
	"github.com/jhoicas/backoffice-core/internal/bootstrap"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/redis"
	"github.com/jhoicas/backoffice-core/pkg/config"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

const importLockTTL = 15 * time.Minute

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr}).Named("stockctl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Almacenamiento: %v\n", err)
		os.Exit(1)
	}

	ledger := inventory.NewLedger(storage.UnitOfWork, storage.Repos.Products, storage.Repos.Movements,
		inventory.LedgerConfig{AllowNegativeStock: cfg.Inventory.AllowNegativeStock}, log)
	products := usecase.NewProductUseCase(storage.Repos.Products)

	var code int
	switch os.Args[1] {
	case "import":
		code = runImport(ctx, os.Args[2:], storage, products, ledger, log)
	case "reconcile":
		code = runReconcile(ctx, os.Args[2:], products, ledger)
	default:
		usage()
		code = 1
	}
	storage.Close()
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: stockctl import [-latin1] [-actor nombre] archivo.csv | stockctl reconcile SKU [SKU...]")
}

func runImport(ctx context.Context, args []string, storage *bootstrap.Storage, products *usecase.ProductUseCase, ledger *inventory.Ledger, log *logger.Logger) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	latin1 := fs.Bool("latin1", false, "el archivo está en ISO-8859-1")
	actor := fs.String("actor", "stockctl", "actor registrado en created_by")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		usage()
		return 1
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		return 1
	}
	defer f.Close()
	var r io.Reader = f
	if *latin1 {
		r = latin1Reader(f)
	}

	im := &importer{products: products, ledger: ledger, actor: *actor, log: log}
	var sum *importSummary
	run := func(ctx context.Context) error {
		var err error
		sum, err = im.Run(ctx, r)
		return err
	}
	if storage.Redis != nil {
		err = redis.NewLocker(storage.Redis).WithLock(ctx, "stockctl:import", importLockTTL, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar: %v\n", err)
		return 1
	}

	fmt.Printf("filas=%d productos_creados=%d movimientos=%d omitidas=%d rechazadas=%d\n",
		sum.Rows, sum.Created, sum.Applied, sum.Skipped, len(sum.Failures))
	for _, msg := range sum.Failures {
		fmt.Fprintln(os.Stderr, "  "+msg)
	}
	if len(sum.Failures) > 0 {
		return 2
	}
	return 0
}

func runReconcile(ctx context.Context, skus []string, products *usecase.ProductUseCase, ledger *inventory.Ledger) int {
	if len(skus) == 0 {
		usage()
		return 1
	}
	code := 0
	for _, sku := range skus {
		p, err := products.GetBySKU(ctx, sku)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", sku, err)
			code = 1
			continue
		}
		if p == nil {
			fmt.Fprintf(os.Stderr, "%s: no existe\n", sku)
			code = 1
			continue
		}
		rec, err := ledger.Reconcile(ctx, p.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", sku, err)
			code = 1
			continue
		}
		state := "OK"
		if !rec.Balanced {
			state = "DESCUADRE"
			if code == 0 {
				code = 2
			}
		}
		fmt.Printf("%-20s stock=%s movimientos=%s diferencia=%s %s\n",
			sku, rec.StockQuantity, rec.MovementSum, rec.Drift, state)
	}
	return code
}
