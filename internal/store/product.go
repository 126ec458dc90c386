package store

import (
	"database/sql"
	"fmt"

	"github.com/ksanogo/cabas/internal/model"
)

// ProductStore manages the catalog used to pre-fill item labels and units.
// Line items never reference catalog rows; deleting or renaming a product
// leaves existing items untouched.
type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productCols = `id, libelle, unite, idCategorie, prixMoyen`

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	var categoryID sql.NullInt64
	var avgPrice sql.NullFloat64
	err := scanner.Scan(&p.ID, &p.Label, &p.Unit, &categoryID, &avgPrice)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	if avgPrice.Valid {
		p.AvgPrice = &avgPrice.Float64
	}
	return &p, nil
}

func (s *ProductStore) List() ([]model.Product, error) {
	rows, err := s.db.Query(`SELECT ` + productCols + ` FROM Produit ORDER BY libelle COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *ProductStore) GetByID(id int64) (*model.Product, error) {
	row := s.db.QueryRow(`SELECT `+productCols+` FROM Produit WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductStore) Create(label, unit string) (*model.Product, error) {
	if unit == "" {
		unit = "pcs"
	}
	result, err := s.db.Exec(`INSERT INTO Produit (libelle, unite) VALUES (?, ?)`, label, unit)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProductStore) Update(id int64, label, unit string) (*model.Product, error) {
	_, err := s.db.Exec(`UPDATE Produit SET libelle = ?, unite = ? WHERE id = ?`, label, unit, id)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProductStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM Produit WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *ProductStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM Produit`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
