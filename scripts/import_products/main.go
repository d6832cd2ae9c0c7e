// Command import_products loads a CSV rate list into the product catalog.
//
// Columns: name, package_size, mrp, category, unit. A header row is
// optional. Products whose full name already exists are skipped.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"billing-backend/internal/config"
	"billing-backend/internal/models"
	"billing-backend/internal/repositories"
	"billing-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type rateRow struct {
	Line        int
	Name        string
	PackageSize string
	MRP         decimal.Decimal
	Category    string
	Unit        string
}

// FullName is the catalog name, e.g. "Natural Honey 500 gm".
func (r rateRow) FullName() string {
	return strings.TrimSpace(r.Name + " " + r.PackageSize)
}

func main() {
	file := flag.String("file", "scripts/import_products/rate_list.csv", "CSV rate list to import")
	discount := flag.String("discount", "", "discount percent applied to every product (default from config)")
	flag.Parse()

	godotenv.Load()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Unable to open %s: %v\n", *file, err)
	}
	defer f.Close()

	rows, err := parseRateList(f)
	if err != nil {
		log.Fatalf("Invalid rate list: %v\n", err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432"), getEnv("DB_NAME", "billing_db"))

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	cfg := config.BillingConfig{
		DefaultGSTRate:         getEnv("DEFAULT_GST_RATE", "12"),
		DefaultHSNCode:         getEnv("DEFAULT_HSN_CODE", "30049012"),
		DefaultDiscountPercent: getEnv("DEFAULT_DISCOUNT_PERCENT", "55"),
		LowStockThreshold:      10,
	}
	if *discount != "" {
		cfg.DefaultDiscountPercent = *discount
	}

	products := services.NewProductService(repositories.NewPostgresStore(pool), cfg)
	added, skipped, failed := importRows(context.Background(), products, rows, os.Stdout)

	fmt.Println()
	fmt.Printf("Added: %d, skipped: %d, failed: %d\n", added, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func parseRateList(r io.Reader) ([]rateRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rows []rateRow
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			continue
		}

		mrp, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil || mrp.IsNegative() {
			return nil, fmt.Errorf("line %d: invalid mrp %q", line, record[2])
		}
		rows = append(rows, rateRow{
			Line:        line,
			Name:        strings.TrimSpace(record[0]),
			PackageSize: strings.TrimSpace(record[1]),
			MRP:         mrp,
			Category:    strings.TrimSpace(record[3]),
			Unit:        strings.TrimSpace(record[4]),
		})
	}
	return rows, nil
}

func importRows(ctx context.Context, products *services.ProductService, rows []rateRow, out io.Writer) (added, skipped, failed int) {
	for i, row := range rows {
		name := row.FullName()
		p, err := products.CreateProduct(ctx, &models.ProductRequest{
			Name:        name,
			Category:    row.Category,
			Unit:        row.Unit,
			PackageSize: row.PackageSize,
			MRP:         row.MRP,
			Description: row.Name + " - " + row.PackageSize,
		})
		switch {
		case errors.Is(err, services.ErrDuplicateName):
			fmt.Fprintf(out, "[%3d] SKIP: %s (already exists)\n", i+1, name)
			skipped++
		case err != nil:
			fmt.Fprintf(out, "[%3d] FAIL: %s: %v\n", i+1, name, err)
			failed++
		default:
			fmt.Fprintf(out, "[%3d] Added: %s - MRP %s, rate %s\n", i+1, name, p.MRP.StringFixed(2), p.SellingPrice.StringFixed(2))
			added++
		}
	}
	return added, skipped, failed
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
