package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"rigtally/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// localDocument is the whole persisted state of the fallback store: one
// JSON file, read and written as a unit. Last write wins.
type localDocument struct {
	Users       []models.LocalUser `json:"users"`
	CurrentUser string             `json:"current_user,omitempty"`
}

// LocalStore mirrors the relational backend's part and profile
// operations over a single JSON document. Setups are not persisted
// locally; those operations fail with ErrLocalSetups and the service
// converts them to the usual sentinels.
type LocalStore struct {
	mu   sync.Mutex
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

func (s *LocalStore) read() (*localDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &localDocument{}, nil
		}
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}

	doc := &localDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse local store: %w", err)
	}

	return doc, nil
}

func (s *LocalStore) write(doc *localDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode local store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}

	return nil
}

func (s *LocalStore) ListParts(userID string) ([]models.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	user := findLocalUser(doc, userID)
	if user == nil {
		return nil, nil
	}

	parts := make([]models.Part, 0, len(user.Parts))
	for idx, p := range user.Parts {
		parts = append(parts, localToPart(userID, p, idx))
	}

	return parts, nil
}

func (s *LocalStore) SavePart(userID, component, name string, amount decimal.Decimal, sortOrder *int) (*models.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	user := findLocalUser(doc, userID)
	if user == nil {
		return nil, fmt.Errorf("local user not found")
	}

	now := time.Now()
	savedIdx := -1
	for i := range user.Parts {
		if user.Parts[i].Component == component {
			user.Parts[i].Name = name
			user.Parts[i].Amount = amount
			if sortOrder != nil {
				user.Parts[i].SortOrder = sortOrder
			}
			user.Parts[i].UpdatedAt = now
			savedIdx = i
			break
		}
	}

	if savedIdx == -1 {
		order := len(user.Parts)
		if sortOrder != nil {
			order = *sortOrder
		}
		user.Parts = append(user.Parts, models.LocalPart{
			ID:        uuid.New().String(),
			Component: component,
			Name:      name,
			Amount:    amount,
			SortOrder: &order,
			CreatedAt: now,
			UpdatedAt: now,
		})
		savedIdx = len(user.Parts) - 1
	}

	if err := s.write(doc); err != nil {
		return nil, err
	}

	part := localToPart(userID, user.Parts[savedIdx], savedIdx)
	return &part, nil
}

func (s *LocalStore) UpdatePartOrders(userID string, parts []models.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	user := findLocalUser(doc, userID)
	if user == nil {
		return fmt.Errorf("local user not found")
	}

	byID := make(map[string]models.Part, len(parts))
	for _, part := range parts {
		byID[part.ID] = part
	}

	for i := range user.Parts {
		if update, ok := byID[user.Parts[i].ID]; ok {
			order := update.SortOrder
			user.Parts[i].Component = update.Component
			user.Parts[i].Name = update.Name
			user.Parts[i].Amount = update.Amount
			user.Parts[i].SortOrder = &order
			user.Parts[i].UpdatedAt = time.Now()
		}
	}

	// Keep the embedded array in display order so list and reorder stay
	// consistent with the relational backend.
	sort.SliceStable(user.Parts, func(i, j int) bool {
		return localSortOrder(user.Parts[i], i) < localSortOrder(user.Parts[j], j)
	})

	return s.write(doc)
}

func (s *LocalStore) DeletePart(userID, partID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	user := findLocalUser(doc, userID)
	if user == nil {
		return fmt.Errorf("local user not found")
	}

	filtered := user.Parts[:0]
	found := false
	for _, p := range user.Parts {
		if p.ID == partID {
			found = true
			continue
		}
		filtered = append(filtered, p)
	}

	if !found {
		return fmt.Errorf("part not found")
	}

	user.Parts = filtered
	return s.write(doc)
}

func (s *LocalStore) ListSetups(userID string) ([]models.PCSetup, error) {
	return nil, ErrLocalSetups
}

func (s *LocalStore) CreateSetup(userID, name, description string, parts []models.SetupPartInput) (*models.PCSetup, CommitState, error) {
	return nil, CommitNone, ErrLocalSetups
}

func (s *LocalStore) GetSetupParts(setupID string) ([]models.SetupPart, error) {
	return nil, ErrLocalSetups
}

func (s *LocalStore) LoadSetupIntoParts(userID, setupID string) (bool, error) {
	return false, ErrLocalSetups
}

func (s *LocalStore) DeleteSetup(userID, setupID string) error {
	return ErrLocalSetups
}

func (s *LocalStore) UpdateSetup(userID, setupID, name, description string, parts []models.SetupPartInput) error {
	return ErrLocalSetups
}

func (s *LocalStore) GetProfile(userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	user := findLocalUser(doc, userID)
	if user == nil {
		return nil, nil
	}

	return &models.UserProfile{
		ID:       user.ID,
		Username: user.Username,
		Currency: user.Currency,
	}, nil
}

func (s *LocalStore) UpsertProfile(userID, username, currency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	user := findLocalUser(doc, userID)
	if user == nil {
		return fmt.Errorf("local user not found")
	}

	user.Currency = currency
	return s.write(doc)
}

// RegisterUser creates a local user record and makes it the current
// identity. Usernames are unique within the document.
func (s *LocalStore) RegisterUser(username, password string) (*models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	for _, u := range doc.Users {
		if u.Username == username {
			return nil, fmt.Errorf("username already exists")
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.LocalUser{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		Currency:     DefaultCurrency,
		Parts:        []models.LocalPart{},
	}

	doc.Users = append(doc.Users, user)
	doc.CurrentUser = user.ID

	if err := s.write(doc); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *LocalStore) LoginUser(username, password string) (*models.LocalUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	for i := range doc.Users {
		if doc.Users[i].Username != username {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(doc.Users[i].PasswordHash), []byte(password)); err != nil {
			return nil, fmt.Errorf("invalid credentials")
		}
		doc.CurrentUser = doc.Users[i].ID
		if err := s.write(doc); err != nil {
			return nil, err
		}
		user := doc.Users[i]
		return &user, nil
	}

	return nil, fmt.Errorf("invalid credentials")
}

// CurrentUserID returns the stored "current user" identity, if any.
func (s *LocalStore) CurrentUserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil || doc.CurrentUser == "" {
		return "", false
	}

	if findLocalUser(doc, doc.CurrentUser) == nil {
		return "", false
	}

	return doc.CurrentUser, true
}

func (s *LocalStore) ClearCurrentUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	doc.CurrentUser = ""
	return s.write(doc)
}

func findLocalUser(doc *localDocument, userID string) *models.LocalUser {
	for i := range doc.Users {
		if doc.Users[i].ID == userID {
			return &doc.Users[i]
		}
	}
	return nil
}

func localSortOrder(p models.LocalPart, idx int) int {
	if p.SortOrder != nil {
		return *p.SortOrder
	}
	return idx
}

// localToPart fills the gaps a hand-edited or legacy document may have,
// so callers see the same shape both backends produce.
func localToPart(userID string, p models.LocalPart, idx int) models.Part {
	part := models.Part{
		ID:        p.ID,
		UserID:    userID,
		Component: p.Component,
		Name:      p.Name,
		Amount:    p.Amount,
		SortOrder: localSortOrder(p, idx),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if part.ID == "" {
		part.ID = fmt.Sprintf("%s-%d", userID, idx)
	}
	if part.Component == "" {
		part.Component = "component"
	}
	if part.CreatedAt.IsZero() {
		part.CreatedAt = time.Now()
	}
	if part.UpdatedAt.IsZero() {
		part.UpdatedAt = time.Now()
	}

	return part
}
