package store

import (
	"database/sql"
	"fmt"

	"github.com/ksanogo/cabas/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemCols = `id, idAchat, libelleProduit, quantite, prixUnitaire, prixTotal, unite`

func scanItem(scanner interface{ Scan(...any) error }) (*model.LineItem, error) {
	var item model.LineItem
	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Label, &item.Quantity,
		&item.UnitPrice, &item.Total, &item.Unit,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create adds an unchecked item: quantity, unit price and total start at
// zero and are filled in when the item is bought.
func (s *ItemStore) Create(listID int64, label, unit string) (*model.LineItem, error) {
	if unit == "" {
		unit = "pcs"
	}
	result, err := s.db.Exec(
		`INSERT INTO LigneAchat (idAchat, libelleProduit, quantite, prixUnitaire, prixTotal, unite)
		 VALUES (?, ?, 0, 0, 0, ?)`,
		listID, label, unit,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) GetByID(id int64) (*model.LineItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM LigneAchat WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) ListByList(listID int64) ([]model.LineItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM LigneAchat WHERE idAchat = ?
		 ORDER BY (quantite > 0 AND prixUnitaire > 0) ASC, id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Update rewrites an item. prixTotal is always recomputed from quantity and
// unit price, and the parent list's total is refreshed; a stored total is
// never trusted across a write.
func (s *ItemStore) Update(id int64, label, unit string, quantity, unitPrice float64) (*model.LineItem, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if unit == "" {
		unit = existing.Unit
	}

	_, err = s.db.Exec(
		`UPDATE LigneAchat SET libelleProduit = ?, unite = ?, quantite = ?, prixUnitaire = ?, prixTotal = ? WHERE id = ?`,
		label, unit, quantity, unitPrice, quantity*unitPrice, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if err := s.refreshListTotal(existing.ListID); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Check marks an item as purchased by filling in its quantity and price.
func (s *ItemStore) Check(id int64, quantity, unitPrice float64) (*model.LineItem, error) {
	return s.setAmounts(id, quantity, unitPrice)
}

// Uncheck returns an item to the not-yet-purchased state.
func (s *ItemStore) Uncheck(id int64) (*model.LineItem, error) {
	return s.setAmounts(id, 0, 0)
}

func (s *ItemStore) setAmounts(id int64, quantity, unitPrice float64) (*model.LineItem, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	_, err = s.db.Exec(
		`UPDATE LigneAchat SET quantite = ?, prixUnitaire = ?, prixTotal = ? WHERE id = ?`,
		quantity, unitPrice, quantity*unitPrice, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set item amounts: %w", err)
	}
	if err := s.refreshListTotal(existing.ListID); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes an item and refreshes the parent list's total. The caller
// decides whether an emptied list should be deleted as well.
func (s *ItemStore) Delete(id int64) error {
	existing, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if _, err := s.db.Exec(`DELETE FROM LigneAchat WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return s.refreshListTotal(existing.ListID)
}

func (s *ItemStore) CountByList(listID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM LigneAchat WHERE idAchat = ?`, listID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func (s *ItemStore) refreshListTotal(listID int64) error {
	_, err := s.db.Exec(
		`UPDATE Achat SET montantTotal = (
			SELECT COALESCE(SUM(prixTotal), 0) FROM LigneAchat
			WHERE idAchat = ? AND quantite > 0 AND prixUnitaire > 0
		) WHERE id = ?`,
		listID, listID,
	)
	if err != nil {
		return fmt.Errorf("refresh list total: %w", err)
	}
	return nil
}
