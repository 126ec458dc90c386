package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// defaultProducts is inserted once, on the first run against an empty
// catalog. User edits are never overwritten.
var defaultProducts = []struct {
	label string
	unit  string
}{
	{"Riz", "kg"},
	{"Huile", "L"},
	{"Sucre", "kg"},
	{"Farine", "kg"},
	{"Lait", "L"},
	{"Pain", "pcs"},
	{"Savon", "pcs"},
	{"Tomate", "kg"},
	{"Oignon", "kg"},
	{"Eau minerale", "pcs"},
}

func seedProducts(db *sql.DB, logger *slog.Logger) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM Produit`).Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range defaultProducts {
		if _, err := db.Exec(`INSERT INTO Produit (libelle, unite) VALUES (?, ?)`, p.label, p.unit); err != nil {
			return fmt.Errorf("insert default product %q: %w", p.label, err)
		}
	}
	logger.Info("seeded product catalog", "products", len(defaultProducts))
	return nil
}
