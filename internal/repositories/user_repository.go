package repositories

import (
	"fmt"
	"strings"
	"sync"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a user. Ids and emails (case-insensitive) are unique.
func (r *UserRepository) Create(u models.User) error {
	email := normalizeEmail(u.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[u.UserID]; exists {
		return domain.ConflictError{Resource: "user", Msg: fmt.Sprintf("id %s already exists", u.UserID)}
	}
	if _, exists := r.byEmail[email]; exists {
		return domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}
	r.byID[u.UserID] = u
	r.byEmail[email] = u.UserID
	return nil
}

func (r *UserRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

func (r *UserRepository) FindByID(id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user", ID: email}
	}
	return r.byID[id], nil
}

// Update replaces a stored user. The email is not changeable.
func (r *UserRepository) Update(u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.UserID]
	if !ok {
		return domain.NotFoundError{Resource: "user", ID: u.UserID}
	}
	if normalizeEmail(cur.Email) != normalizeEmail(u.Email) {
		return domain.ValidationError{Field: "email", Msg: "email cannot be changed"}
	}
	r.byID[u.UserID] = u
	return nil
}
