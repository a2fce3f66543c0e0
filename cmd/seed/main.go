package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/ppfood/api/config"
	"github.com/ppfood/api/pkg/helpers"
)

// seed creates the admin account and a starter menu. Registration never
// grants the admin role; this is the only place it is assigned.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@ppfood.local"
	password := "admin123456"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var adminID int64
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, role, is_verified)
		VALUES ($1, $2, 'Admin', $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
		RETURNING id
	`, email, hash, cfg.AdminRole).Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%d email=%s password=%s\n", adminID, email, password)

	categories := []struct {
		th, en string
	}{
		{"อาหารจานหลัก", "Main Dishes"},
		{"ของทานเล่น", "Appetizers"},
		{"เครื่องดื่ม", "Drinks"},
		{"ของหวาน", "Desserts"},
	}

	catIDs := make([]int64, 0, len(categories))
	for _, c := range categories {
		var id int64
		err := db.QueryRow(`
			INSERT INTO categories (name_th, name_en)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM categories WHERE name_th = $1)
			RETURNING id
		`, c.th, c.en).Scan(&id)
		if err == sql.ErrNoRows {
			if err := db.QueryRow(`SELECT id FROM categories WHERE name_th = $1`, c.th).Scan(&id); err != nil {
				log.Fatalf("failed to look up category %s: %v", c.en, err)
			}
		} else if err != nil {
			log.Fatalf("failed to seed category %s: %v", c.en, err)
		}
		catIDs = append(catIDs, id)
	}
	fmt.Printf("seeded %d categories\n", len(catIDs))

	products := []struct {
		cat         int64
		nameTH      string
		nameEN      string
		price       float64
		recommended bool
	}{
		{catIDs[0], "ผัดไทยกุ้งสด", "Pad Thai with Prawns", 89, true},
		{catIDs[0], "ข้าวกะเพราไก่", "Basil Chicken Rice", 65, false},
		{catIDs[1], "ปอเปี๊ยะทอด", "Fried Spring Rolls", 49, false},
		{catIDs[2], "ชาไทยเย็น", "Thai Iced Tea", 35, true},
		{catIDs[3], "ข้าวเหนียวมะม่วง", "Mango Sticky Rice", 69, true},
	}

	seeded := 0
	for _, p := range products {
		res, err := db.Exec(`
			INSERT INTO products (category_id, name_th, name_en, price, is_recommended, is_available)
			SELECT $1, $2, $3, $4, $5, TRUE
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name_th = $2)
		`, p.cat, p.nameTH, p.nameEN, p.price, p.recommended)
		if err != nil {
			log.Fatalf("failed to seed product %s: %v", p.nameEN, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}
	fmt.Printf("seeded %d products\n", seeded)
}
