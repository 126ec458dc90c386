package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// An evolution is one in-place schema upgrade for stores created by older
// application versions. needed introspects the live schema; apply performs
// the change. Evolutions run in the order listed and each one is guarded, so
// re-running them on an up-to-date store is a no-op.
type evolution struct {
	name   string
	needed func(db *sql.DB) (bool, error)
	apply  func(db *sql.DB) error
}

var evolutions = []evolution{
	{
		// Early stores referenced the product catalog by id from each line
		// item. The catalog is editable, so the reference is rewritten into
		// an owned label string; a line item stays readable even after its
		// catalog row is renamed or deleted.
		name:   "denormalize product label",
		needed: func(db *sql.DB) (bool, error) { return columnExists(db, "LigneAchat", "idProduit") },
		apply:  denormalizeProductLabel,
	},
	{
		// Must run after the rebuild above: libelleProduit does not exist on
		// a legacy store until then.
		name:   "ligne achat liste index",
		needed: indexMissing("idx_ligne_achat_liste"),
		apply:  createIndex("idx_ligne_achat_liste", "LigneAchat", "idAchat"),
	},
	{
		name:   "ligne achat libelle index",
		needed: indexMissing("idx_ligne_achat_libelle"),
		apply:  createIndex("idx_ligne_achat_libelle", "LigneAchat", "libelleProduit"),
	},
	{
		name:   "ligne achat unite",
		needed: columnMissing("LigneAchat", "unite"),
		apply:  addColumn("LigneAchat", "unite", "TEXT NOT NULL DEFAULT 'pcs'"),
	},
	{
		name:   "achat montant total",
		needed: columnMissing("Achat", "montantTotal"),
		apply:  addColumn("Achat", "montantTotal", "REAL NOT NULL DEFAULT 0"),
	},
	{
		name:   "produit prix moyen",
		needed: columnMissing("Produit", "prixMoyen"),
		apply:  addColumn("Produit", "prixMoyen", "REAL"),
	},
	{
		name:   "produit categorie",
		needed: columnMissing("Produit", "idCategorie"),
		apply:  addColumn("Produit", "idCategorie", "INTEGER"),
	},
	{
		name:   "notification achat link",
		needed: columnMissing("Notification", "achatId"),
		apply:  addColumn("Notification", "achatId", "INTEGER"),
	},
	{
		name:   "notification recurrence",
		needed: columnMissing("Notification", "recurrence"),
		apply:  addColumn("Notification", "recurrence", "TEXT NOT NULL DEFAULT ''"),
	},
}

func indexMissing(name string) func(db *sql.DB) (bool, error) {
	return func(db *sql.DB) (bool, error) {
		var count int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, name,
		).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("check index %s: %w", name, err)
		}
		return count == 0, nil
	}
}

func createIndex(name, table, column string) func(db *sql.DB) error {
	return func(db *sql.DB) error {
		_, err := db.Exec(fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(%s)`, name, table, column))
		if err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
		return nil
	}
}

func columnMissing(table, column string) func(db *sql.DB) (bool, error) {
	return func(db *sql.DB) (bool, error) {
		has, err := columnExists(db, table, column)
		if err != nil {
			return false, err
		}
		return !has, nil
	}
}

// applyEvolutions runs every outstanding evolution. A failing step is logged
// and skipped so that independent evolutions still get their chance; query
// code treats the affected columns as optional.
func applyEvolutions(db *sql.DB, logger *slog.Logger) {
	for _, ev := range evolutions {
		needed, err := ev.needed(db)
		if err != nil {
			logger.Warn("schema evolution check failed", "evolution", ev.name, "error", err)
			continue
		}
		if !needed {
			continue
		}
		if err := ev.apply(db); err != nil {
			logger.Warn("schema evolution failed, keeping previous shape", "evolution", ev.name, "error", err)
			continue
		}
		logger.Info("schema evolution applied", "evolution", ev.name)
	}
}

func addColumn(table, column, definition string) func(db *sql.DB) error {
	return func(db *sql.DB) error {
		_, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition))
		if err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, column, err)
		}
		return nil
	}
}

// denormalizeProductLabel rebuilds LigneAchat without the idProduit foreign
// key: a new table with the target shape is created, rows are copied with the
// catalog label resolved into libelleProduit (or "unknown product" when the
// referenced row no longer exists), then the old table is dropped and the new
// one renamed into place. A temp table left over from a previously failed
// attempt is dropped before retrying.
func denormalizeProductLabel(db *sql.DB) error {
	// The pre-migration shape may predate the unite column as well. Introspect
	// before opening the transaction: the pool holds a single connection, and
	// a query through db while the tx owns it would wait forever.
	uniteExpr := `'pcs'`
	if has, err := columnExists(db, "LigneAchat", "unite"); err != nil {
		return err
	} else if has {
		uniteExpr = `COALESCE(la.unite, 'pcs')`
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS LigneAchat_new`); err != nil {
		return fmt.Errorf("drop leftover temp table: %w", err)
	}

	if _, err := tx.Exec(`CREATE TABLE LigneAchat_new (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		idAchat INTEGER NOT NULL REFERENCES Achat(id) ON DELETE CASCADE,
		libelleProduit TEXT NOT NULL,
		quantite REAL NOT NULL DEFAULT 0,
		prixUnitaire REAL NOT NULL DEFAULT 0,
		prixTotal REAL NOT NULL DEFAULT 0,
		unite TEXT NOT NULL DEFAULT 'pcs'
	)`); err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}

	copyRows := fmt.Sprintf(`INSERT INTO LigneAchat_new (id, idAchat, libelleProduit, quantite, prixUnitaire, prixTotal, unite)
		SELECT la.id, la.idAchat,
			COALESCE((SELECT p.libelle FROM Produit p WHERE p.id = la.idProduit), 'unknown product'),
			COALESCE(la.quantite, 0), COALESCE(la.prixUnitaire, 0), COALESCE(la.prixTotal, 0),
			%s
		FROM LigneAchat la`, uniteExpr)
	if _, err := tx.Exec(copyRows); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}

	if _, err := tx.Exec(`DROP TABLE LigneAchat`); err != nil {
		return fmt.Errorf("drop old table: %w", err)
	}
	if _, err := tx.Exec(`ALTER TABLE LigneAchat_new RENAME TO LigneAchat`); err != nil {
		return fmt.Errorf("rename temp table: %w", err)
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_ligne_achat_liste ON LigneAchat(idAchat)`); err != nil {
		return fmt.Errorf("recreate list index: %w", err)
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_ligne_achat_libelle ON LigneAchat(libelleProduit)`); err != nil {
		return fmt.Errorf("recreate label index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
