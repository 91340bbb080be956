package service

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"rigtally/internal/database"
	"rigtally/internal/models"
	"rigtally/internal/session"
	"rigtally/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

type fixedRemoteSource struct {
	userID string
	err    error
}

func (f *fixedRemoteSource) CurrentUserID() (string, error) {
	return f.userID, f.err
}

type emptyLocalSource struct{}

func (emptyLocalSource) CurrentUserID() (string, bool) {
	return "", false
}

func setupService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	resolver := session.NewResolver(&fixedRemoteSource{userID: "user-1"}, emptyLocalSource{})
	local := store.NewLocalStore(filepath.Join(t.TempDir(), "local.json"))
	svc := New(resolver, store.NewRemoteStore(db), local)

	return svc, db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal("Failed to parse amount:", err)
	}
	return d
}

func TestNotAuthenticated(t *testing.T) {
	resolver := session.NewResolver(&fixedRemoteSource{}, emptyLocalSource{})
	local := store.NewLocalStore(filepath.Join(t.TempDir(), "local.json"))
	svc := New(resolver, store.NewRemoteStore(nil), local)

	if _, err := svc.ListParts(); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.SavePart("CPU", "", decimal.Zero, nil); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
	if _, _, err := svc.CreateSetup("Build", "", nil); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.GetCurrency(); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestListPartsSwallowsBackendFailure(t *testing.T) {
	svc, db := setupService(t)

	if _, err := db.Exec(`DROP TABLE parts`); err != nil {
		t.Fatal("Failed to drop parts table:", err)
	}

	parts, err := svc.ListParts()
	if err != nil {
		t.Fatal("Expected backend failure to be swallowed, got:", err)
	}
	if parts == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(parts) != 0 {
		t.Errorf("Expected no parts, got %d", len(parts))
	}
}

func TestSavePartReturnsNilOnFailure(t *testing.T) {
	svc, db := setupService(t)

	if _, err := db.Exec(`DROP TABLE parts`); err != nil {
		t.Fatal("Failed to drop parts table:", err)
	}

	part, err := svc.SavePart("CPU", "Ryzen 5", mustDecimal(t, "129.99"), nil)
	if err != nil {
		t.Fatal("Expected backend failure to be swallowed, got:", err)
	}
	if part != nil {
		t.Errorf("Expected nil part on failure, got %+v", part)
	}
}

func TestPartLifecycleThroughService(t *testing.T) {
	svc, _ := setupService(t)

	part, err := svc.SavePart("CPU", "Ryzen 5", mustDecimal(t, "129.99"), nil)
	if err != nil {
		t.Fatal("Failed to save part:", err)
	}
	if part == nil {
		t.Fatal("Expected saved part")
	}

	parts, err := svc.ListParts()
	if err != nil {
		t.Fatal("Failed to list parts:", err)
	}
	if len(parts) != 1 {
		t.Fatalf("Expected 1 part, got %d", len(parts))
	}

	parts[0].SortOrder = 3
	ok, err := svc.UpdatePartOrders(parts)
	if err != nil {
		t.Fatal("Failed to update part orders:", err)
	}
	if !ok {
		t.Error("Expected reorder to succeed")
	}

	ok, err = svc.DeletePart(part.ID)
	if err != nil {
		t.Fatal("Failed to delete part:", err)
	}
	if !ok {
		t.Error("Expected delete to succeed")
	}

	// Deleting again yields false, not an error.
	ok, err = svc.DeletePart(part.ID)
	if err != nil {
		t.Fatal("Expected second delete to be swallowed, got:", err)
	}
	if ok {
		t.Error("Expected second delete to report false")
	}
}

func TestSeedDefaultParts(t *testing.T) {
	svc, _ := setupService(t)

	if err := svc.SeedDefaultParts(); err != nil {
		t.Fatal("Failed to seed default parts:", err)
	}

	parts, err := svc.ListParts()
	if err != nil {
		t.Fatal("Failed to list parts:", err)
	}

	if len(parts) != len(store.DefaultComponents) {
		t.Fatalf("Expected %d seeded parts, got %d", len(store.DefaultComponents), len(parts))
	}

	for i, part := range parts {
		if part.Component != store.DefaultComponents[i] {
			t.Errorf("Expected component %s at position %d, got %s", store.DefaultComponents[i], i, part.Component)
		}
		if part.Name != "" {
			t.Errorf("Expected empty name, got %s", part.Name)
		}
		if !part.Amount.IsZero() {
			t.Errorf("Expected zero amount, got %s", part.Amount)
		}
	}

	// Seeding again does not duplicate components.
	if err := svc.SeedDefaultParts(); err != nil {
		t.Fatal("Failed to seed again:", err)
	}
	parts, err = svc.ListParts()
	if err != nil {
		t.Fatal("Failed to list parts after reseed:", err)
	}
	if len(parts) != len(store.DefaultComponents) {
		t.Errorf("Expected %d parts after reseed, got %d", len(store.DefaultComponents), len(parts))
	}
}

func TestCreateSetupEnsuresProfile(t *testing.T) {
	svc, db := setupService(t)

	setup, state, err := svc.CreateSetup("Build", "first try", nil)
	if err != nil {
		t.Fatal("Failed to create setup:", err)
	}
	if setup == nil {
		t.Fatal("Expected created setup")
	}
	if state != store.CommitComplete {
		t.Errorf("Expected commit state complete, got %s", state)
	}

	var currency string
	err = db.QueryRow(`SELECT currency FROM user_profiles WHERE id = ?`, "user-1").Scan(&currency)
	if err != nil {
		t.Fatal("Expected profile row after setup create:", err)
	}
	if currency != store.DefaultCurrency {
		t.Errorf("Expected default currency %s, got %s", store.DefaultCurrency, currency)
	}
}

func TestCreateSetupFailureReturnsCommitState(t *testing.T) {
	svc, db := setupService(t)

	if _, err := db.Exec(`DROP TABLE setup_parts`); err != nil {
		t.Fatal("Failed to drop setup_parts table:", err)
	}

	setup, state, err := svc.CreateSetup("Doomed", "", []models.SetupPartInput{
		{Component: "CPU", Amount: mustDecimal(t, "10")},
	})
	if err != nil {
		t.Fatal("Expected backend failure to be swallowed, got:", err)
	}
	if setup != nil {
		t.Error("Expected nil setup on failure")
	}
	if state != store.CommitNone {
		t.Errorf("Expected commit state none, got %s", state)
	}
}

func TestGetCurrencyCreatesProfile(t *testing.T) {
	svc, db := setupService(t)

	currency, err := svc.GetCurrency()
	if err != nil {
		t.Fatal("Failed to get currency:", err)
	}
	if currency != store.DefaultCurrency {
		t.Errorf("Expected default currency %s, got %s", store.DefaultCurrency, currency)
	}

	var username string
	err = db.QueryRow(`SELECT username FROM user_profiles WHERE id = ?`, "user-1").Scan(&username)
	if err != nil {
		t.Fatal("Expected profile row after first currency read:", err)
	}
	if username != store.DefaultProfileUsername {
		t.Errorf("Expected default username %s, got %s", store.DefaultProfileUsername, username)
	}

	ok, err := svc.SetCurrency("USD")
	if err != nil {
		t.Fatal("Failed to set currency:", err)
	}
	if !ok {
		t.Error("Expected currency update to succeed")
	}

	currency, err = svc.GetCurrency()
	if err != nil {
		t.Fatal("Failed to get updated currency:", err)
	}
	if currency != "USD" {
		t.Errorf("Expected USD, got %s", currency)
	}
}

func TestGetCurrencyDefaultsOnFailure(t *testing.T) {
	svc, db := setupService(t)

	if _, err := db.Exec(`DROP TABLE user_profiles`); err != nil {
		t.Fatal("Failed to drop user_profiles table:", err)
	}

	currency, err := svc.GetCurrency()
	if err != nil {
		t.Fatal("Expected backend failure to be swallowed, got:", err)
	}
	if currency != store.DefaultCurrency {
		t.Errorf("Expected default currency %s, got %s", store.DefaultCurrency, currency)
	}
}

func TestSetupLifecycleThroughService(t *testing.T) {
	svc, _ := setupService(t)

	setup, _, err := svc.CreateSetup("Build", "v1", []models.SetupPartInput{
		{Component: "CPU", Name: "Ryzen 5", Amount: mustDecimal(t, "100")},
		{Component: "GPU", Name: "RTX 4060", Amount: mustDecimal(t, "300")},
	})
	if err != nil {
		t.Fatal("Failed to create setup:", err)
	}
	if !setup.TotalAmount.Equal(mustDecimal(t, "400")) {
		t.Errorf("Expected total 400, got %s", setup.TotalAmount)
	}

	setups, err := svc.ListSetups()
	if err != nil {
		t.Fatal("Failed to list setups:", err)
	}
	if len(setups) != 1 {
		t.Fatalf("Expected 1 setup, got %d", len(setups))
	}

	children, err := svc.GetSetupParts(setup.ID)
	if err != nil {
		t.Fatal("Failed to get setup parts:", err)
	}
	if len(children) != 2 {
		t.Fatalf("Expected 2 setup parts, got %d", len(children))
	}

	loaded, err := svc.LoadSetupIntoParts(setup.ID)
	if err != nil {
		t.Fatal("Failed to load setup:", err)
	}
	if !loaded {
		t.Error("Expected load to report true")
	}

	parts, err := svc.ListParts()
	if err != nil {
		t.Fatal("Failed to list parts after load:", err)
	}
	if len(parts) != 2 {
		t.Fatalf("Expected 2 loaded parts, got %d", len(parts))
	}

	ok, err := svc.UpdateSetup(setup.ID, "Build v2", "revised", []models.SetupPartInput{
		{Component: "CPU", Name: "Ryzen 7", Amount: mustDecimal(t, "250")},
	})
	if err != nil {
		t.Fatal("Failed to update setup:", err)
	}
	if !ok {
		t.Error("Expected update to succeed")
	}

	ok, err = svc.DeleteSetup(setup.ID)
	if err != nil {
		t.Fatal("Failed to delete setup:", err)
	}
	if !ok {
		t.Error("Expected delete to succeed")
	}

	setups, err = svc.ListSetups()
	if err != nil {
		t.Fatal("Failed to list setups after delete:", err)
	}
	if len(setups) != 0 {
		t.Errorf("Expected no setups, got %d", len(setups))
	}
}
