// Package service is the sentinel boundary of the data-access layer.
// Every storage failure is logged with operation context and converted
// to a benign result: an empty slice for lists, nil for single-entity
// operations, false for boolean mutations. The only error that reaches
// callers is session.ErrNotAuthenticated, raised while resolving the
// user identity.
package service

import (
	"rigtally/internal/logger"
	"rigtally/internal/models"
	"rigtally/internal/session"
	"rigtally/internal/store"

	"github.com/shopspring/decimal"
)

type Service struct {
	resolver *session.Resolver
	remote   store.Backend
	local    store.Backend
}

func New(resolver *session.Resolver, remote, local store.Backend) *Service {
	return &Service{
		resolver: resolver,
		remote:   remote,
		local:    local,
	}
}

// resolve returns the active user id and the backend matching the
// resolver's mode. The backend is chosen by the one sticky mode flag
// rather than re-checked ad hoc inside each operation.
func (s *Service) resolve() (string, store.Backend, error) {
	userID, mode, err := s.resolver.Resolve()
	if err != nil {
		return "", nil, err
	}
	if mode == session.ModeLocal {
		return userID, s.local, nil
	}
	return userID, s.remote, nil
}

// ListParts returns the user's parts ordered by sort order. Backend
// failures yield an empty list, never an error.
func (s *Service) ListParts() ([]models.Part, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return nil, err
	}

	parts, err := backend.ListParts(userID)
	if err != nil {
		logger.Error("Failed to list parts", "user_id", userID, "error", err)
		return []models.Part{}, nil
	}

	if parts == nil {
		parts = []models.Part{}
	}
	return parts, nil
}

// SavePart upserts the user's part for the given component. Returns nil
// on backend failure.
func (s *Service) SavePart(component, name string, amount decimal.Decimal, sortOrder *int) (*models.Part, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return nil, err
	}

	part, err := backend.SavePart(userID, component, name, amount, sortOrder)
	if err != nil {
		logger.Error("Failed to save part", "user_id", userID, "component", component, "error", err)
		return nil, nil
	}

	return part, nil
}

// UpdatePartOrders persists a full reordering as one batched upsert
// keyed by part id. No partial-success reporting: false means the batch
// did not commit.
func (s *Service) UpdatePartOrders(parts []models.Part) (bool, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return false, err
	}

	if err := backend.UpdatePartOrders(userID, parts); err != nil {
		logger.Error("Failed to update part orders",
			"user_id", userID,
			"updates", parts,
			"error", err)
		return false, nil
	}

	return true, nil
}

// DeletePart removes the part scoped to both id and owning user.
func (s *Service) DeletePart(partID string) (bool, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return false, err
	}

	if err := backend.DeletePart(userID, partID); err != nil {
		logger.Error("Failed to delete part", "user_id", userID, "part_id", partID, "error", err)
		return false, nil
	}

	return true, nil
}

// SeedDefaultParts saves the canonical component list in order with an
// empty name and a zero amount. Safe to call repeatedly: SavePart is an
// upsert keyed by component.
func (s *Service) SeedDefaultParts() error {
	if _, _, err := s.resolve(); err != nil {
		return err
	}

	for _, component := range store.DefaultComponents {
		if _, err := s.SavePart(component, "", decimal.Zero, nil); err != nil {
			return err
		}
	}

	return nil
}

// ListSetups returns the user's setups, newest first.
func (s *Service) ListSetups() ([]models.PCSetup, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return nil, err
	}

	setups, err := backend.ListSetups(userID)
	if err != nil {
		logger.Error("Failed to list setups", "user_id", userID, "error", err)
		return []models.PCSetup{}, nil
	}

	if setups == nil {
		setups = []models.PCSetup{}
	}
	return setups, nil
}

// CreateSetup persists a named snapshot with a recomputed total. The
// CommitState tells the caller how far a failed write got: CommitNone
// means nothing remains persisted, CommitPartial means the parent row
// survived a failed compensating delete.
func (s *Service) CreateSetup(name, description string, parts []models.SetupPartInput) (*models.PCSetup, store.CommitState, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return nil, store.CommitNone, err
	}

	// Make sure a profile row exists before the first setup write.
	if _, err := s.EnsureProfile(); err != nil {
		logger.Warn("Failed to ensure profile before setup create", "user_id", userID, "error", err)
	}

	setup, state, err := backend.CreateSetup(userID, name, description, parts)
	if err != nil {
		logger.Error("Failed to create setup",
			"user_id", userID,
			"name", name,
			"commit_state", state,
			"error", err)
		return nil, state, nil
	}

	return setup, state, nil
}

// GetSetupParts returns a setup's children in insertion order.
func (s *Service) GetSetupParts(setupID string) ([]models.SetupPart, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return nil, err
	}

	parts, err := backend.GetSetupParts(setupID)
	if err != nil {
		logger.Error("Failed to get setup parts", "user_id", userID, "setup_id", setupID, "error", err)
		return []models.SetupPart{}, nil
	}

	if parts == nil {
		parts = []models.SetupPart{}
	}
	return parts, nil
}

// LoadSetupIntoParts destructively replaces the user's current parts
// with copies of the setup's children. A setup with no children is a
// no-op and returns false.
func (s *Service) LoadSetupIntoParts(setupID string) (bool, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return false, err
	}

	loaded, err := backend.LoadSetupIntoParts(userID, setupID)
	if err != nil {
		logger.Error("Failed to load setup into parts", "user_id", userID, "setup_id", setupID, "error", err)
		return false, nil
	}

	return loaded, nil
}

// DeleteSetup removes the setup's children first, then the parent row
// scoped to the owning user.
func (s *Service) DeleteSetup(setupID string) (bool, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return false, err
	}

	if err := backend.DeleteSetup(userID, setupID); err != nil {
		logger.Error("Failed to delete setup", "user_id", userID, "setup_id", setupID, "error", err)
		return false, nil
	}

	return true, nil
}

// UpdateSetup recomputes the total, updates the parent row and replaces
// the full child set. Prior successful steps are not rolled back on
// failure; false means state may be partially mutated.
func (s *Service) UpdateSetup(setupID, name, description string, parts []models.SetupPartInput) (bool, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return false, err
	}

	if err := backend.UpdateSetup(userID, setupID, name, description, parts); err != nil {
		logger.Error("Failed to update setup", "user_id", userID, "setup_id", setupID, "error", err)
		return false, nil
	}

	return true, nil
}

// EnsureProfile reads the user's profile and creates one with the
// default username and currency when no row exists. The creation is an
// explicit, separately testable step rather than a hidden side effect
// of the currency read.
func (s *Service) EnsureProfile() (*models.UserProfile, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return nil, err
	}

	profile, err := backend.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	if err := backend.UpsertProfile(userID, store.DefaultProfileUsername, store.DefaultCurrency); err != nil {
		return nil, err
	}

	return &models.UserProfile{
		ID:       userID,
		Username: store.DefaultProfileUsername,
		Currency: store.DefaultCurrency,
	}, nil
}

// GetCurrency returns the profile's currency, creating the profile row
// on first read. The read always succeeds with at least the default.
func (s *Service) GetCurrency() (string, error) {
	userID, _, err := s.resolve()
	if err != nil {
		return "", err
	}

	profile, err := s.EnsureProfile()
	if err != nil {
		logger.Error("Failed to read currency", "user_id", userID, "error", err)
		return store.DefaultCurrency, nil
	}

	if profile.Currency == "" {
		return store.DefaultCurrency, nil
	}
	return profile.Currency, nil
}

// SetCurrency upserts the profile row with the given currency.
func (s *Service) SetCurrency(currency string) (bool, error) {
	userID, backend, err := s.resolve()
	if err != nil {
		return false, err
	}

	if err := backend.UpsertProfile(userID, store.DefaultProfileUsername, currency); err != nil {
		logger.Error("Failed to update currency", "user_id", userID, "currency", currency, "error", err)
		return false, nil
	}

	return true, nil
}
