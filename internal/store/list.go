package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ksanogo/cabas/internal/model"
)

type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

// listCols always comes with the two item-count subselects appended by
// listQuery, so every scanned row carries ItemCount and PurchasedCount.
const listCols = `a.id, a.nomListe, a.dateAchat, a.montantTotal`

const listQuery = `SELECT ` + listCols + `,
	(SELECT COUNT(*) FROM LigneAchat l WHERE l.idAchat = a.id),
	(SELECT COUNT(*) FROM LigneAchat l WHERE l.idAchat = a.id AND l.quantite > 0 AND l.prixUnitaire > 0)
	FROM Achat a`

func scanList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var date string
	err := scanner.Scan(&l.ID, &l.Name, &date, &l.Total, &l.ItemCount, &l.PurchasedCount)
	if err != nil {
		return nil, err
	}
	l.Date = parseStoredTime(date)
	return &l, nil
}

func (s *ListStore) Create(name string, date time.Time) (*model.ShoppingList, error) {
	result, err := s.db.Exec(
		`INSERT INTO Achat (nomListe, dateAchat) VALUES (?, ?)`,
		name, formatStoredTime(date),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ListStore) GetByID(id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(listQuery+` WHERE a.id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *ListStore) List() ([]model.ShoppingList, error) {
	rows, err := s.db.Query(listQuery + ` ORDER BY datetime(a.dateAchat) DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ListStore) Rename(id int64, name string) (*model.ShoppingList, error) {
	_, err := s.db.Exec(`UPDATE Achat SET nomListe = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename list: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the list; the foreign key cascades to its line items.
func (s *ListStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM Achat WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// RefreshTotal recomputes the denormalized montantTotal from the list's line
// items. Only purchased items count toward the total.
func (s *ListStore) RefreshTotal(id int64) error {
	_, err := s.db.Exec(
		`UPDATE Achat SET montantTotal = (
			SELECT COALESCE(SUM(prixTotal), 0) FROM LigneAchat
			WHERE idAchat = ? AND quantite > 0 AND prixUnitaire > 0
		) WHERE id = ?`,
		id, id,
	)
	if err != nil {
		return fmt.Errorf("refresh list total: %w", err)
	}
	return nil
}

func (s *ListStore) CountItems(id int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM LigneAchat WHERE idAchat = ?`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
