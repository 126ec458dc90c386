package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ksanogo/cabas/internal/model"
)

// ReportStore computes derived statistics over the store. Every method is a
// pure read; nothing here mutates data or caches results. An item counts
// toward spend only when it has been purchased (quantity and unit price both
// above zero), and every sum defaults to 0 when no rows match.
type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// purchasedFilter gates every money aggregate: unpriced items never count.
const purchasedFilter = `l.quantite > 0 AND l.prixUnitaire > 0`

func (s *ReportStore) TotalSpend() (float64, error) {
	var total float64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(l.prixTotal), 0) FROM LigneAchat l WHERE ` + purchasedFilter,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total spend: %w", err)
	}
	return total, nil
}

func (s *ReportStore) TotalSpendInMonth(year, month int) (float64, error) {
	var total float64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(l.prixTotal), 0)
		 FROM LigneAchat l JOIN Achat a ON a.id = l.idAchat
		 WHERE `+purchasedFilter+`
		   AND strftime('%Y', a.dateAchat) = ? AND strftime('%m', a.dateAchat) = ?`,
		fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total spend in month: %w", err)
	}
	return total, nil
}

// TotalSpendInRange sums purchased totals for lists dated within
// [start, end], inclusive by calendar day.
func (s *ReportStore) TotalSpendInRange(start, end time.Time) (float64, error) {
	var total float64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(l.prixTotal), 0)
		 FROM LigneAchat l JOIN Achat a ON a.id = l.idAchat
		 WHERE `+purchasedFilter+`
		   AND date(a.dateAchat) BETWEEN date(?) AND date(?)`,
		formatDay(start), formatDay(end),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total spend in range: %w", err)
	}
	return total, nil
}

// CountPurchases counts distinct lists holding at least one purchased item.
func (s *ReportStore) CountPurchases() (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT a.id)
		 FROM Achat a JOIN LigneAchat l ON l.idAchat = a.id
		 WHERE ` + purchasedFilter,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count purchases: %w", err)
	}
	return count, nil
}

func (s *ReportStore) CountPurchasesInRange(start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT a.id)
		 FROM Achat a JOIN LigneAchat l ON l.idAchat = a.id
		 WHERE `+purchasedFilter+`
		   AND date(a.dateAchat) BETWEEN date(?) AND date(?)`,
		formatDay(start), formatDay(end),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count purchases in range: %w", err)
	}
	return count, nil
}

// TopProductByQuantity returns the label with the highest purchased quantity,
// or nil on an empty store. Ties fall to whichever row the grouping yields
// first.
func (s *ReportStore) TopProductByQuantity() (*model.ProductQuantity, error) {
	row := s.db.QueryRow(
		`SELECT l.libelleProduit, SUM(l.quantite)
		 FROM LigneAchat l WHERE ` + purchasedFilter + `
		 GROUP BY l.libelleProduit
		 ORDER BY SUM(l.quantite) DESC LIMIT 1`,
	)
	var pq model.ProductQuantity
	err := row.Scan(&pq.Label, &pq.TotalQuantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top product: %w", err)
	}
	return &pq, nil
}

// BestSpendingDay returns the calendar day with the highest purchased total,
// or nil on an empty store.
func (s *ReportStore) BestSpendingDay() (*model.DaySpend, error) {
	row := s.db.QueryRow(
		`SELECT date(a.dateAchat) AS jour, SUM(l.prixTotal)
		 FROM LigneAchat l JOIN Achat a ON a.id = l.idAchat
		 WHERE ` + purchasedFilter + `
		 GROUP BY jour
		 ORDER BY SUM(l.prixTotal) DESC LIMIT 1`,
	)
	var ds model.DaySpend
	err := row.Scan(&ds.Day, &ds.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("best spending day: %w", err)
	}
	return &ds, nil
}

// BreakdownByProduct groups purchased spend by label, descending by amount.
// Pass nil bounds for an all-time breakdown.
func (s *ReportStore) BreakdownByProduct(start, end *time.Time) ([]model.ProductAmount, error) {
	query := `SELECT l.libelleProduit, SUM(l.prixTotal)
		 FROM LigneAchat l JOIN Achat a ON a.id = l.idAchat
		 WHERE ` + purchasedFilter
	var args []any
	if start != nil && end != nil {
		query += ` AND date(a.dateAchat) BETWEEN date(?) AND date(?)`
		args = append(args, formatDay(*start), formatDay(*end))
	}
	query += ` GROUP BY l.libelleProduit ORDER BY SUM(l.prixTotal) DESC, l.libelleProduit ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("breakdown by product: %w", err)
	}
	defer rows.Close()

	var breakdown []model.ProductAmount
	for rows.Next() {
		var pa model.ProductAmount
		if err := rows.Scan(&pa.Label, &pa.Amount); err != nil {
			return nil, fmt.Errorf("scan breakdown row: %w", err)
		}
		breakdown = append(breakdown, pa)
	}
	return breakdown, rows.Err()
}

// ProductHistory lists every purchase of an exact label within [start, end],
// newest first, with the owning list's name and date.
func (s *ReportStore) ProductHistory(label string, start, end time.Time) ([]model.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT l.id, a.id, a.nomListe, a.dateAchat, l.libelleProduit, l.quantite, l.prixUnitaire, l.prixTotal, l.unite
		 FROM LigneAchat l JOIN Achat a ON a.id = l.idAchat
		 WHERE `+purchasedFilter+`
		   AND l.libelleProduit = ?
		   AND date(a.dateAchat) BETWEEN date(?) AND date(?)
		 ORDER BY datetime(a.dateAchat) DESC, l.id DESC`,
		label, formatDay(start), formatDay(end),
	)
	if err != nil {
		return nil, fmt.Errorf("product history: %w", err)
	}
	defer rows.Close()

	var history []model.Transaction
	for rows.Next() {
		var tr model.Transaction
		var date string
		err := rows.Scan(&tr.ItemID, &tr.ListID, &tr.ListName, &date, &tr.Label, &tr.Quantity, &tr.UnitPrice, &tr.Amount, &tr.Unit)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		tr.Date = parseStoredTime(date)
		history = append(history, tr)
	}
	return history, rows.Err()
}

// DistinctProductLabels lists every non-empty label ever used in a line
// item, alphabetically. Unpurchased items count here: the product picker
// should offer them too.
func (s *ReportStore) DistinctProductLabels() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT libelleProduit FROM LigneAchat
		 WHERE TRIM(libelleProduit) <> ''
		 ORDER BY libelleProduit COLLATE NOCASE ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("distinct labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}
