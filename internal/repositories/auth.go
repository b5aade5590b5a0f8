package repositories

import (
	"database/sql"
	"fmt"
)

// AuthRepository persists the access token and pending CSRF state in
// the single-row auth_slot table. Implements session.Store.
type AuthRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new [AuthRepository] with the given database connection
func NewAuthRepository(db *sql.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// SaveToken stores the bearer access token, replacing any prior value.
func (r *AuthRepository) SaveToken(token string) error {
	return r.update("access_token", token)
}

// LoadToken returns the stored access token, or "" when none is stored.
func (r *AuthRepository) LoadToken() (string, error) {
	return r.load("access_token")
}

// ClearToken removes the stored access token.
func (r *AuthRepository) ClearToken() error {
	return r.clear("access_token")
}

// SavePendingState stores the CSRF state of an in-flight login attempt
// so a callback arriving after a process restart can still validate.
func (r *AuthRepository) SavePendingState(state string) error {
	return r.update("pending_state", state)
}

// LoadPendingState returns the persisted pending state, or "" when no
// login is in flight.
func (r *AuthRepository) LoadPendingState() (string, error) {
	return r.load("pending_state")
}

// ClearPendingState removes the persisted pending state.
func (r *AuthRepository) ClearPendingState() error {
	return r.clear("pending_state")
}

// update writes a value into the named slot column.
//
// Column names are fixed at the call sites above, never caller input.
func (r *AuthRepository) update(column, value string) error {
	query := fmt.Sprintf("UPDATE auth_slot SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1", column)

	result, err := r.db.Exec(query, value)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("auth slot row missing, run migrations first")
	}

	return nil
}

func (r *AuthRepository) load(column string) (string, error) {
	query := fmt.Sprintf("SELECT %s FROM auth_slot WHERE id = 1", column)

	var value sql.NullString
	err := r.db.QueryRow(query).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", column, err)
	}

	if !value.Valid {
		return "", nil
	}
	return value.String, nil
}

func (r *AuthRepository) clear(column string) error {
	query := fmt.Sprintf("UPDATE auth_slot SET %s = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = 1", column)

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to clear %s: %w", column, err)
	}

	return nil
}
