package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	seedProducts(ctx, conn)
	seedMembers(ctx, conn)

	log.Println("Seeding completed successfully!")
}

func seedProducts(ctx context.Context, conn *pgx.Conn) {
	log.Println("Seeding products...")

	products := []struct {
		SKU       string
		Name      string
		BasePrice int64
		Stock     int
		Barcode   string
		Tiers     [][2]int64 // minQty, unitPrice
	}{
		{"BRS-5KG", "Beras Premium 5kg", 78000, 120, "8991234567890", [][2]int64{{1, 78000}, {10, 74000}, {50, 70000}}},
		{"MNY-2L", "Minyak Goreng 2L", 38000, 200, "8991234567891", [][2]int64{{1, 38000}, {6, 36000}, {24, 34000}}},
		{"GLA-1KG", "Gula Pasir 1kg", 16500, 300, "8991234567892", [][2]int64{{1, 16500}, {12, 15500}}},
		{"TPG-1KG", "Tepung Terigu 1kg", 12000, 250, "8991234567893", nil},
		{"AIR-600", "Air Mineral 600ml", 3500, 480, "8991234567894", [][2]int64{{1, 3500}, {24, 3000}, {48, 2800}}},
		{"KCP-135", "Kecap Manis 135ml", 9500, 90, "8991234567895", [][2]int64{{1, 9500}, {12, 8900}}},
	}

	for _, p := range products {
		var id string
		err := conn.QueryRow(ctx, `
			INSERT INTO products (sku, name, base_price, stock, barcode, active)
			VALUES ($1, $2, $3, $4, $5, true)
			ON CONFLICT (sku) DO UPDATE SET
				name = EXCLUDED.name,
				base_price = EXCLUDED.base_price,
				stock = EXCLUDED.stock,
				barcode = EXCLUDED.barcode
			RETURNING id`,
			p.SKU, p.Name, p.BasePrice, p.Stock, p.Barcode).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.SKU, err)
		}
		for _, t := range p.Tiers {
			_, err := conn.Exec(ctx, `
				INSERT INTO price_tiers (product_id, min_qty, unit_price)
				VALUES ($1, $2, $3)
				ON CONFLICT (product_id, min_qty) DO UPDATE SET unit_price = EXCLUDED.unit_price`,
				id, t[0], t[1])
			if err != nil {
				log.Fatalf("Failed to seed tier for %s: %v", p.SKU, err)
			}
		}
	}
}

func seedMembers(ctx context.Context, conn *pgx.Conn) {
	log.Println("Seeding members...")

	members := []struct {
		Code            string
		Name            string
		DiscountPercent int
	}{
		{"MBR-0001", "Budi Santoso", 10},
		{"MBR-0002", "Siti Aminah", 5},
		{"MBR-0003", "Andi Pratama", 10},
		{"MBR-0004", "Dewi Lestari", 0},
		{"MBR-0005", "Warung Berkah Jaya", 15},
	}

	for _, m := range members {
		_, err := conn.Exec(ctx, `
			INSERT INTO members (code, name, discount_percent, active)
			VALUES ($1, $2, $3, true)
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				discount_percent = EXCLUDED.discount_percent`,
			m.Code, m.Name, m.DiscountPercent)
		if err != nil {
			log.Fatalf("Failed to seed member %s: %v", m.Code, err)
		}
	}
}
