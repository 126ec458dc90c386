package database

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// tableColumns returns the column names of a table in declaration order.
func tableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		t.Fatalf("table info %s: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func indexExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, name,
	).Scan(&count); err != nil {
		t.Fatalf("check index %s: %v", name, err)
	}
	return count > 0
}

func TestOpenCreatesSchema(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "cabas.db"))

	for _, table := range []string{"Produit", "Achat", "LigneAchat", "Notification", "Parametre"} {
		if cols := tableColumns(t, db, table); len(cols) == 0 {
			t.Errorf("table %s missing after init", table)
		}
	}

	wantItemCols := []string{"id", "idAchat", "libelleProduit", "quantite", "prixUnitaire", "prixTotal", "unite"}
	gotItemCols := tableColumns(t, db, "LigneAchat")
	if len(gotItemCols) != len(wantItemCols) {
		t.Fatalf("LigneAchat columns = %v, want %v", gotItemCols, wantItemCols)
	}
	for i, col := range wantItemCols {
		if gotItemCols[i] != col {
			t.Errorf("LigneAchat column[%d] = %q, want %q", i, gotItemCols[i], col)
		}
	}

	for _, idx := range []string{"idx_ligne_achat_liste", "idx_ligne_achat_libelle"} {
		if !indexExists(t, db, idx) {
			t.Errorf("index %s missing after init", idx)
		}
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cabas.db")

	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO Achat (nomListe, dateAchat) VALUES ('Marche', '2025-01-10T08:00:00Z')`,
	); err != nil {
		t.Fatalf("insert list: %v", err)
	}
	firstCols := tableColumns(t, db, "LigneAchat")
	firstProducts := countRows(t, db, "Produit")
	db.Close()

	// Second launch against the same store must change nothing.
	db = openTestDB(t, path)

	secondCols := tableColumns(t, db, "LigneAchat")
	if len(firstCols) != len(secondCols) {
		t.Fatalf("columns changed across launches: %v vs %v", firstCols, secondCols)
	}
	for i := range firstCols {
		if firstCols[i] != secondCols[i] {
			t.Errorf("column[%d] changed: %q vs %q", i, firstCols[i], secondCols[i])
		}
	}
	if got := countRows(t, db, "Produit"); got != firstProducts {
		t.Errorf("product count changed: %d vs %d (seed must not re-fire)", got, firstProducts)
	}
	if got := countRows(t, db, "Achat"); got != 1 {
		t.Errorf("achat count = %d, want 1", got)
	}
}

func TestSeedOnlyWhenCatalogEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cabas.db")

	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := countRows(t, db, "Produit"); got != len(defaultProducts) {
		t.Fatalf("seeded product count = %d, want %d", got, len(defaultProducts))
	}

	// User edits the catalog down to one row; re-init must not restore it.
	if _, err := db.Exec(`DELETE FROM Produit WHERE libelle <> 'Riz'`); err != nil {
		t.Fatalf("trim catalog: %v", err)
	}
	db.Close()

	db = openTestDB(t, path)
	if got := countRows(t, db, "Produit"); got != 1 {
		t.Errorf("product count after re-init = %d, want 1", got)
	}
}

func TestColumnExists(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "cabas.db"))

	tests := []struct {
		table  string
		column string
		want   bool
	}{
		{"LigneAchat", "libelleProduit", true},
		{"LigneAchat", "idProduit", false},
		{"Achat", "montantTotal", true},
		{"NoSuchTable", "anything", false},
	}
	for _, tt := range tests {
		got, err := columnExists(db, tt.table, tt.column)
		if err != nil {
			t.Fatalf("columnExists(%s, %s): %v", tt.table, tt.column, err)
		}
		if got != tt.want {
			t.Errorf("columnExists(%s, %s) = %v, want %v", tt.table, tt.column, got, tt.want)
		}
	}
}

// TestLegacyStoreMigration opens a store in the oldest shape this app ever
// shipped: line items reference the catalog by id and have no unit column,
// and a temp table from a failed earlier rebuild is still lying around.
func TestLegacyStoreMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cabas.db")

	legacy, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	legacySchema := []string{
		`CREATE TABLE Produit (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			libelle TEXT NOT NULL,
			unite TEXT NOT NULL DEFAULT 'pcs'
		)`,
		`CREATE TABLE Achat (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nomListe TEXT NOT NULL,
			dateAchat TEXT NOT NULL
		)`,
		`CREATE TABLE LigneAchat (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			idAchat INTEGER NOT NULL REFERENCES Achat(id) ON DELETE CASCADE,
			idProduit INTEGER,
			quantite REAL DEFAULT 1,
			prixUnitaire REAL DEFAULT 0,
			prixTotal REAL DEFAULT 0
		)`,
		`CREATE TABLE LigneAchat_new (id INTEGER PRIMARY KEY)`,
		`INSERT INTO Produit (libelle, unite) VALUES ('Riz', 'kg'), ('Savon', 'pcs')`,
		`INSERT INTO Achat (nomListe, dateAchat) VALUES ('Epicerie', '2025-01-10T09:30:00Z')`,
		`INSERT INTO LigneAchat (idAchat, idProduit, quantite, prixUnitaire, prixTotal) VALUES
			(1, 1, 2, 3000, 6000),
			(1, 2, 1, 500, 500),
			(1, 99, 1, 250, 250)`,
	}
	for _, stmt := range legacySchema {
		if _, err := legacy.Exec(stmt); err != nil {
			t.Fatalf("legacy schema: %v", err)
		}
	}
	legacy.Close()

	db := openTestDB(t, path)

	// Same rows, by original identity
	if got := countRows(t, db, "LigneAchat"); got != 3 {
		t.Fatalf("line item count after migration = %d, want 3", got)
	}

	var label, unit string
	if err := db.QueryRow(`SELECT libelleProduit, unite FROM LigneAchat WHERE id = 1`).Scan(&label, &unit); err != nil {
		t.Fatalf("read migrated row: %v", err)
	}
	if label != "Riz" {
		t.Errorf("row 1 label = %q, want %q", label, "Riz")
	}
	if unit != "pcs" {
		t.Errorf("row 1 unit = %q, want %q (legacy rows had no unit)", unit, "pcs")
	}

	// Dangling catalog reference becomes the sentinel label
	if err := db.QueryRow(`SELECT libelleProduit FROM LigneAchat WHERE id = 3`).Scan(&label); err != nil {
		t.Fatalf("read dangling row: %v", err)
	}
	if label != "unknown product" {
		t.Errorf("dangling row label = %q, want %q", label, "unknown product")
	}

	// Old column gone, no temp table left behind
	if has, _ := columnExists(db, "LigneAchat", "idProduit"); has {
		t.Error("idProduit column still present after migration")
	}
	var tempCount int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'LigneAchat_new'`,
	).Scan(&tempCount); err != nil {
		t.Fatalf("check temp table: %v", err)
	}
	if tempCount != 0 {
		t.Error("temp table LigneAchat_new left behind")
	}

	// Additive evolutions filled in the columns the legacy store lacked
	if has, _ := columnExists(db, "Achat", "montantTotal"); !has {
		t.Error("Achat.montantTotal missing after migration")
	}

	// Catalog was not empty, so the seed must not have fired
	if got := countRows(t, db, "Produit"); got != 2 {
		t.Errorf("product count = %d, want 2 (no reseed)", got)
	}

	// Indexes exist again after the rebuild; they must not be part of the
	// baseline, which has to succeed before libelleProduit exists.
	for _, idx := range []string{"idx_ligne_achat_liste", "idx_ligne_achat_libelle"} {
		if !indexExists(t, db, idx) {
			t.Errorf("index %s missing after migration", idx)
		}
	}
}

// TestLegacyStoreMigrationKeepsUnit covers the middle-aged shape: line items
// still reference the catalog by id but already carry a unit column, which
// the rebuild must preserve.
func TestLegacyStoreMigrationKeepsUnit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cabas.db")

	legacy, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	legacySchema := []string{
		`CREATE TABLE Produit (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			libelle TEXT NOT NULL,
			unite TEXT NOT NULL DEFAULT 'pcs'
		)`,
		`CREATE TABLE Achat (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nomListe TEXT NOT NULL,
			dateAchat TEXT NOT NULL
		)`,
		`CREATE TABLE LigneAchat (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			idAchat INTEGER NOT NULL REFERENCES Achat(id) ON DELETE CASCADE,
			idProduit INTEGER,
			quantite REAL DEFAULT 1,
			prixUnitaire REAL DEFAULT 0,
			prixTotal REAL DEFAULT 0,
			unite TEXT
		)`,
		`INSERT INTO Produit (libelle, unite) VALUES ('Huile', 'L')`,
		`INSERT INTO Achat (nomListe, dateAchat) VALUES ('Marche', '2025-02-01T10:00:00Z')`,
		`INSERT INTO LigneAchat (idAchat, idProduit, quantite, prixUnitaire, prixTotal, unite) VALUES
			(1, 1, 2, 1500, 3000, 'L'),
			(1, 1, 1, 1500, 1500, NULL)`,
	}
	for _, stmt := range legacySchema {
		if _, err := legacy.Exec(stmt); err != nil {
			t.Fatalf("legacy schema: %v", err)
		}
	}
	legacy.Close()

	db := openTestDB(t, path)

	var label, unit string
	if err := db.QueryRow(`SELECT libelleProduit, unite FROM LigneAchat WHERE id = 1`).Scan(&label, &unit); err != nil {
		t.Fatalf("read migrated row: %v", err)
	}
	if label != "Huile" {
		t.Errorf("row 1 label = %q, want %q", label, "Huile")
	}
	if unit != "L" {
		t.Errorf("row 1 unit = %q, want %q", unit, "L")
	}

	// NULL unit falls back to the default
	if err := db.QueryRow(`SELECT unite FROM LigneAchat WHERE id = 2`).Scan(&unit); err != nil {
		t.Fatalf("read null-unit row: %v", err)
	}
	if unit != "pcs" {
		t.Errorf("row 2 unit = %q, want %q", unit, "pcs")
	}
}
