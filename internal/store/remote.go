package store

import (
	"database/sql"
	"fmt"
	"time"

	"rigtally/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RemoteStore is the relational backend. One part per (user, component)
// is enforced by lookup-before-write, not by the schema.
type RemoteStore struct {
	db *sql.DB
}

func NewRemoteStore(db *sql.DB) *RemoteStore {
	return &RemoteStore{db: db}
}

func (s *RemoteStore) ListParts(userID string) ([]models.Part, error) {
	query := `
		SELECT id, user_id, component, name, amount, sort_order, created_at, updated_at
		FROM parts
		WHERE user_id = ?
		ORDER BY sort_order ASC, rowid ASC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}
	defer rows.Close()

	var parts []models.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *part)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parts: %w", err)
	}

	return parts, nil
}

func (s *RemoteStore) SavePart(userID, component, name string, amount decimal.Decimal, sortOrder *int) (*models.Part, error) {
	existing, err := s.getPartByComponent(userID, component)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if sortOrder != nil {
			query := `
				UPDATE parts
				SET name = ?, amount = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`
			_, err = s.db.Exec(query, name, amount.String(), *sortOrder, existing.ID)
		} else {
			query := `
				UPDATE parts
				SET name = ?, amount = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`
			_, err = s.db.Exec(query, name, amount.String(), existing.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update part: %w", err)
		}

		existing.Name = name
		existing.Amount = amount
		if sortOrder != nil {
			existing.SortOrder = *sortOrder
		}
		existing.UpdatedAt = time.Now()
		return existing, nil
	}

	order := 0
	if sortOrder != nil {
		order = *sortOrder
	} else {
		// Default to insertion index: new parts go to the end.
		var count int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM parts WHERE user_id = ?`, userID).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count parts: %w", err)
		}
		order = count
	}

	partID := uuid.New().String()

	query := `
		INSERT INTO parts (id, user_id, component, name, amount, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query, partID, userID, component, name, amount.String(), order)
	if err != nil {
		return nil, fmt.Errorf("failed to create part: %w", err)
	}

	part := &models.Part{
		ID:        partID,
		UserID:    userID,
		Component: component,
		Name:      name,
		Amount:    amount,
		SortOrder: order,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	return part, nil
}

func (s *RemoteStore) UpdatePartOrders(userID string, parts []models.Part) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The conflict update is scoped to the owner so a foreign part id in
	// the batch cannot overwrite another user's row.
	query := `
		INSERT INTO parts (id, user_id, component, name, amount, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			component = excluded.component,
			name = excluded.name,
			amount = excluded.amount,
			sort_order = excluded.sort_order,
			updated_at = CURRENT_TIMESTAMP
		WHERE parts.user_id = excluded.user_id
	`

	for _, part := range parts {
		if _, err := tx.Exec(query, part.ID, userID, part.Component, part.Name, part.Amount.String(), part.SortOrder); err != nil {
			return fmt.Errorf("failed to upsert part order: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit part orders: %w", err)
	}

	return nil
}

func (s *RemoteStore) DeletePart(userID, partID string) error {
	query := `
		DELETE FROM parts
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.Exec(query, partID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete part: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("part not found")
	}

	return nil
}

func (s *RemoteStore) ListSetups(userID string) ([]models.PCSetup, error) {
	query := `
		SELECT id, user_id, name, COALESCE(description, ''), total_amount, created_at, updated_at
		FROM pc_setups
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query setups: %w", err)
	}
	defer rows.Close()

	var setups []models.PCSetup
	for rows.Next() {
		var setup models.PCSetup
		var total string
		err := rows.Scan(
			&setup.ID,
			&setup.UserID,
			&setup.Name,
			&setup.Description,
			&total,
			&setup.CreatedAt,
			&setup.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setup: %w", err)
		}
		setup.TotalAmount, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("failed to parse setup total: %w", err)
		}
		setups = append(setups, setup)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setups: %w", err)
	}

	return setups, nil
}

func (s *RemoteStore) CreateSetup(userID, name, description string, parts []models.SetupPartInput) (*models.PCSetup, CommitState, error) {
	total := sumAmounts(parts)
	setupID := uuid.New().String()

	query := `
		INSERT INTO pc_setups (id, user_id, name, description, total_amount)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, setupID, userID, name, description, total.String())
	if err != nil {
		return nil, CommitNone, fmt.Errorf("failed to create setup: %w", err)
	}

	if err := s.insertSetupParts(setupID, parts); err != nil {
		// Compensating delete of the just-created parent. Best effort:
		// not verified, not retried.
		if _, delErr := s.db.Exec(`DELETE FROM pc_setups WHERE id = ?`, setupID); delErr != nil {
			return nil, CommitPartial, fmt.Errorf("failed to add setup parts (cleanup failed: %v): %w", delErr, err)
		}
		return nil, CommitNone, fmt.Errorf("failed to add setup parts: %w", err)
	}

	setup := &models.PCSetup{
		ID:          setupID,
		UserID:      userID,
		Name:        name,
		Description: description,
		TotalAmount: total,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	return setup, CommitComplete, nil
}

func (s *RemoteStore) GetSetupParts(setupID string) ([]models.SetupPart, error) {
	query := `
		SELECT id, setup_id, component, name, amount, created_at
		FROM setup_parts
		WHERE setup_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := s.db.Query(query, setupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query setup parts: %w", err)
	}
	defer rows.Close()

	var parts []models.SetupPart
	for rows.Next() {
		var part models.SetupPart
		var amount string
		err := rows.Scan(
			&part.ID,
			&part.SetupID,
			&part.Component,
			&part.Name,
			&amount,
			&part.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setup part: %w", err)
		}
		part.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse setup part amount: %w", err)
		}
		parts = append(parts, part)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setup parts: %w", err)
	}

	return parts, nil
}

func (s *RemoteStore) LoadSetupIntoParts(userID, setupID string) (bool, error) {
	setupParts, err := s.GetSetupParts(setupID)
	if err != nil {
		return false, err
	}

	if len(setupParts) == 0 {
		return false, nil
	}

	// Destructive replace. Not transactional: a failure after this
	// delete leaves the user with zero parts.
	if _, err := s.db.Exec(`DELETE FROM parts WHERE user_id = ?`, userID); err != nil {
		return false, fmt.Errorf("failed to clear current parts: %w", err)
	}

	insertQuery := `
		INSERT INTO parts (id, user_id, component, name, amount, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for i, part := range setupParts {
		_, err := s.db.Exec(insertQuery, uuid.New().String(), userID, part.Component, part.Name, part.Amount.String(), i)
		if err != nil {
			return false, fmt.Errorf("failed to load setup part: %w", err)
		}
	}

	return true, nil
}

func (s *RemoteStore) DeleteSetup(userID, setupID string) error {
	var owner string
	err := s.db.QueryRow(`SELECT user_id FROM pc_setups WHERE id = ?`, setupID).Scan(&owner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("setup not found")
	}
	if err != nil {
		return fmt.Errorf("failed to query setup: %w", err)
	}
	if owner != userID {
		return fmt.Errorf("setup not found")
	}

	// Children first, to satisfy referential ordering. If this fails the
	// parent stays untouched.
	if _, err := s.db.Exec(`DELETE FROM setup_parts WHERE setup_id = ?`, setupID); err != nil {
		return fmt.Errorf("failed to delete setup parts: %w", err)
	}

	result, err := s.db.Exec(`DELETE FROM pc_setups WHERE id = ? AND user_id = ?`, setupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete setup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("setup not found")
	}

	return nil
}

func (s *RemoteStore) UpdateSetup(userID, setupID, name, description string, parts []models.SetupPartInput) error {
	total := sumAmounts(parts)

	query := `
		UPDATE pc_setups
		SET name = ?, description = ?, total_amount = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.Exec(query, name, description, total.String(), setupID, userID)
	if err != nil {
		return fmt.Errorf("failed to update setup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("setup not found")
	}

	// Full child replace, no diffing. Prior steps are not rolled back on
	// failure.
	if _, err := s.db.Exec(`DELETE FROM setup_parts WHERE setup_id = ?`, setupID); err != nil {
		return fmt.Errorf("failed to delete existing setup parts: %w", err)
	}

	if err := s.insertSetupParts(setupID, parts); err != nil {
		return err
	}

	return nil
}

func (s *RemoteStore) GetProfile(userID string) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	query := `
		SELECT id, username, currency, created_at, updated_at
		FROM user_profiles
		WHERE id = ?
	`

	err := s.db.QueryRow(query, userID).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Currency,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return profile, nil
}

func (s *RemoteStore) UpsertProfile(userID, username, currency string) error {
	query := `
		INSERT INTO user_profiles (id, username, currency)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			currency = excluded.currency,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.Exec(query, userID, username, currency)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

func (s *RemoteStore) insertSetupParts(setupID string, parts []models.SetupPartInput) error {
	query := `
		INSERT INTO setup_parts (id, setup_id, component, name, amount)
		VALUES (?, ?, ?, ?, ?)
	`

	for _, part := range parts {
		_, err := s.db.Exec(query, uuid.New().String(), setupID, part.Component, part.Name, part.Amount.String())
		if err != nil {
			return fmt.Errorf("failed to insert setup part: %w", err)
		}
	}

	return nil
}

func (s *RemoteStore) getPartByComponent(userID, component string) (*models.Part, error) {
	query := `
		SELECT id, user_id, component, name, amount, sort_order, created_at, updated_at
		FROM parts
		WHERE user_id = ? AND component = ?
	`

	row := s.db.QueryRow(query, userID, component)
	part, err := scanPartRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query part: %w", err)
	}

	return part, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPart(scanner rowScanner) (*models.Part, error) {
	part, err := scanPartRow(scanner)
	if err != nil {
		return nil, fmt.Errorf("failed to scan part: %w", err)
	}
	return part, nil
}

func scanPartRow(scanner rowScanner) (*models.Part, error) {
	part := &models.Part{}
	var amount string

	err := scanner.Scan(
		&part.ID,
		&part.UserID,
		&part.Component,
		&part.Name,
		&amount,
		&part.SortOrder,
		&part.CreatedAt,
		&part.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	part.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse part amount: %w", err)
	}

	return part, nil
}
