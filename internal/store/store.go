// Package store implements the dual-mode data-access layer: a relational
// backend over sqlite and a whole-document JSON fallback exposing the same
// operations. Backends return plain errors; the sentinel conversion the
// API relies on (empty slice / nil / false) happens in the service layer.
package store

import (
	"errors"

	"rigtally/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied whenever no profile exists or a read fails.
const DefaultCurrency = "PHP"

// DefaultProfileUsername is the placeholder username written when a
// profile row is created implicitly.
const DefaultProfileUsername = "Anonymous User"

// DefaultComponents is the canonical seed list, in display order.
var DefaultComponents = []string{
	"CPU",
	"GPU",
	"Motherboard",
	"RAM",
	"Storage",
	"Power Supply",
	"Case",
	"CPU Cooler",
}

// ErrLocalSetups is returned by the local store for setup operations,
// which only the relational backend persists.
var ErrLocalSetups = errors.New("setups are not persisted by the local store")

// CommitState reports how far a multi-step setup write got. The create
// path inserts the parent row and then the children; a failure between
// the two triggers a best-effort compensating delete of the parent, which
// itself can fail and leave the parent behind.
type CommitState int

const (
	// CommitNone: nothing persisted (either nothing was written, or the
	// compensating delete removed the parent again).
	CommitNone CommitState = iota
	// CommitComplete: parent and all children persisted.
	CommitComplete
	// CommitPartial: parent persisted, children failed, and the
	// compensating delete also failed. Manual cleanup needed.
	CommitPartial
)

func (s CommitState) String() string {
	switch s {
	case CommitComplete:
		return "complete"
	case CommitPartial:
		return "partial"
	default:
		return "none"
	}
}

// Backend is the storage contract shared by the relational and the local
// JSON implementations. Every operation is scoped to the owning user.
type Backend interface {
	ListParts(userID string) ([]models.Part, error)
	SavePart(userID, component, name string, amount decimal.Decimal, sortOrder *int) (*models.Part, error)
	UpdatePartOrders(userID string, parts []models.Part) error
	DeletePart(userID, partID string) error

	ListSetups(userID string) ([]models.PCSetup, error)
	CreateSetup(userID, name, description string, parts []models.SetupPartInput) (*models.PCSetup, CommitState, error)
	GetSetupParts(setupID string) ([]models.SetupPart, error)
	LoadSetupIntoParts(userID, setupID string) (bool, error)
	DeleteSetup(userID, setupID string) error
	UpdateSetup(userID, setupID, name, description string, parts []models.SetupPartInput) error

	// GetProfile has zero-or-one semantics: (nil, nil) when no row exists.
	GetProfile(userID string) (*models.UserProfile, error)
	UpsertProfile(userID, username, currency string) error
}

func sumAmounts(parts []models.SetupPartInput) decimal.Decimal {
	total := decimal.Zero
	for _, part := range parts {
		total = total.Add(part.Amount)
	}
	return total
}
