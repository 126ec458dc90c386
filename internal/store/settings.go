package store

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SettingsStore is a small key/value table for app preferences: currency,
// the optional app-lock PIN (stored as a bcrypt hash, never in clear).
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

const (
	keyPINHash  = "pin_hash"
	keyCurrency = "devise"

	defaultCurrency = "XOF"
)

// Get returns the stored value for key, or "" when the key is absent.
func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT valeur FROM Parametre WHERE cle = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO Parametre (cle, valeur) VALUES (?, ?)
		 ON CONFLICT(cle) DO UPDATE SET valeur = excluded.valeur`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) Currency() (string, error) {
	currency, err := s.Get(keyCurrency)
	if err != nil {
		return "", err
	}
	if currency == "" {
		return defaultCurrency, nil
	}
	return currency, nil
}

func (s *SettingsStore) SetCurrency(currency string) error {
	return s.Set(keyCurrency, currency)
}

func (s *SettingsStore) HasPIN() (bool, error) {
	hash, err := s.Get(keyPINHash)
	if err != nil {
		return false, err
	}
	return hash != "", nil
}

func (s *SettingsStore) SetPIN(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	return s.Set(keyPINHash, string(hash))
}

func (s *SettingsStore) ClearPIN() error {
	_, err := s.db.Exec(`DELETE FROM Parametre WHERE cle = ?`, keyPINHash)
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

// VerifyPIN reports whether pin matches the stored hash. With no PIN set the
// app is unlocked and every pin verifies.
func (s *SettingsStore) VerifyPIN(pin string) (bool, error) {
	hash, err := s.Get(keyPINHash)
	if err != nil {
		return false, err
	}
	if hash == "" {
		return true, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return false, nil
	}
	return true, nil
}
