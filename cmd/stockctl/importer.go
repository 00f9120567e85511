package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/application/usecase"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// Columnas esperadas en la cabecera del CSV de saldos iniciales (el orden puede variar).
var importColumns = []string{"sku", "name", "price", "quantity", "unit_cost"}

// importer carga saldos iniciales: crea los productos que falten y registra un movimiento
// opening_balance por fila con cantidad > 0.
type importer struct {
	products *usecase.ProductUseCase
	ledger   *inventory.Ledger
	actor    string
	log      *logger.Logger
}

type importSummary struct {
	Rows     int
	Created  int
	Applied  int
	Skipped  int
	Failures []string
}

// latin1Reader decodifica archivos ISO-8859-1 exportados por hojas de cálculo antiguas.
func latin1Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
}

func (im *importer) Run(ctx context.Context, r io.Reader) (*importSummary, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	sum := &importSummary{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("línea %d: %w", line, err)
		}
		sum.Rows++
		if err := im.row(ctx, rec, idx, sum); err != nil {
			sum.Failures = append(sum.Failures, fmt.Sprintf("línea %d: %v", line, err))
			im.log.Warn().Err(err).Int("line", line).Msg("fila rechazada")
		}
	}
	return sum, nil
}

func (im *importer) row(ctx context.Context, rec []string, idx map[string]int, sum *importSummary) error {
	get := func(col string) string { return strings.TrimSpace(rec[idx[col]]) }

	sku := get("sku")
	qty, err := parseDecimal(get("quantity"))
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	cost, err := parseDecimal(get("unit_cost"))
	if err != nil {
		return fmt.Errorf("unit_cost: %w", err)
	}

	product, err := im.products.GetBySKU(ctx, sku)
	if err != nil {
		return err
	}
	productID := ""
	if product != nil {
		productID = product.ID
	} else {
		price, err := parseDecimal(get("price"))
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		created, err := im.products.Create(ctx, dto.CreateProductRequest{SKU: sku, Name: get("name"), Price: price})
		if err != nil {
			return err
		}
		productID = created.ID
		sum.Created++
	}

	if !qty.IsPositive() {
		sum.Skipped++
		return nil
	}
	in := inventory.MovementInput{
		ProductID:     productID,
		Direction:     entity.MovementIn,
		Quantity:      qty,
		ReferenceType: entity.ReferenceOpeningBalance,
		ReferenceID:   sku,
		Notes:         "importación stockctl",
		Actor:         im.actor,
	}
	if cost.IsPositive() {
		in.UnitCost = &cost
	}
	if _, err := im.ledger.ApplyMovement(ctx, in); err != nil {
		return err
	}
	sum.Applied++
	return nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range importColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %q (se esperan: %s)", col, strings.Join(importColumns, ","))
		}
	}
	return idx, nil
}

// parseDecimal acepta vacío (cero) y coma decimal.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}
