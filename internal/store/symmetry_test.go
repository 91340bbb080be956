package store

import (
	"path/filepath"
	"testing"
)

// Both backends should be observationally interchangeable for the part
// operations: same components, names, amounts, and display order after
// the same sequence of calls.
func TestBackendsAgreeOnPartOperations(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	remote := NewRemoteStore(db)

	local := NewLocalStore(filepath.Join(t.TempDir(), "local.json"))
	localUser, err := local.RegisterUser("alice", "password123")
	if err != nil {
		t.Fatal("Failed to register local user:", err)
	}

	backends := []struct {
		name   string
		store  Backend
		userID string
	}{
		{"remote", remote, "remote-user"},
		{"local", local, localUser.ID},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			// Save three parts, overwrite one, reorder, delete one.
			for _, component := range []string{"CPU", "GPU", "RAM"} {
				if _, err := b.store.SavePart(b.userID, component, "initial", amount(t, "10"), nil); err != nil {
					t.Fatal("Failed to save part:", err)
				}
			}
			if _, err := b.store.SavePart(b.userID, "GPU", "RTX 4070", amount(t, "549.99"), nil); err != nil {
				t.Fatal("Failed to overwrite part:", err)
			}

			parts, err := b.store.ListParts(b.userID)
			if err != nil {
				t.Fatal("Failed to list parts:", err)
			}
			if len(parts) != 3 {
				t.Fatalf("Expected 3 parts, got %d", len(parts))
			}

			for i := range parts {
				parts[i].SortOrder = len(parts) - 1 - i
			}
			if err := b.store.UpdatePartOrders(b.userID, parts); err != nil {
				t.Fatal("Failed to update part orders:", err)
			}

			reordered, err := b.store.ListParts(b.userID)
			if err != nil {
				t.Fatal("Failed to list parts after reorder:", err)
			}

			expected := []string{"RAM", "GPU", "CPU"}
			for i, part := range reordered {
				if part.Component != expected[i] {
					t.Errorf("Expected component %s at position %d, got %s", expected[i], i, part.Component)
				}
			}
			if reordered[1].Name != "RTX 4070" || !reordered[1].Amount.Equal(amount(t, "549.99")) {
				t.Errorf("Expected overwritten values, got %s / %s", reordered[1].Name, reordered[1].Amount)
			}

			if err := b.store.DeletePart(b.userID, reordered[0].ID); err != nil {
				t.Fatal("Failed to delete part:", err)
			}

			remaining, err := b.store.ListParts(b.userID)
			if err != nil {
				t.Fatal("Failed to list remaining parts:", err)
			}
			if len(remaining) != 2 {
				t.Fatalf("Expected 2 parts after delete, got %d", len(remaining))
			}
			if remaining[0].Component != "GPU" || remaining[1].Component != "CPU" {
				t.Errorf("Expected GPU then CPU, got %s then %s", remaining[0].Component, remaining[1].Component)
			}
		})
	}
}
