package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lithammer/shortuuid/v3"
	"golang.org/x/crypto/bcrypt"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
	"traintrack/internal/utils"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type UserStore interface {
	Create(u models.User) error
	Exists(id string) bool
	FindByID(id string) (models.User, error)
	FindByEmail(email string) (models.User, error)
	Update(u models.User) error
}

type SessionStore interface {
	Add(s models.Session)
	Resolve(token string) (string, error)
	Remove(token string) bool
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type ProfileUpdate struct {
	Name            *string
	Phone           *string
	CurrentPassword string
	NewPassword     string
}

// AuthService issues HS256 bearer tokens backed by a session registry.
// A token is accepted only while its signature, expiry and session are all
// valid, so logout takes effect before the token expires.
type AuthService struct {
	Users      UserStore
	Sessions   SessionStore
	Secret     []byte
	TTL        time.Duration
	BcryptCost int
	Random     utils.RandomSource
	Now        func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) cost() int {
	if s.BcryptCost >= bcrypt.MinCost && s.BcryptCost <= bcrypt.MaxCost {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}

func (s *AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 24 * time.Hour
}

func (s *AuthService) random() utils.RandomSource {
	if s.Random != nil {
		return s.Random
	}
	return utils.DefaultRandom
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return models.User{}, "", domain.ValidationError{Field: "name", Msg: "name is required"}
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, "", domain.ValidationError{Field: "email", Msg: "email is invalid"}
	}
	if len(in.Password) < minPasswordLength {
		return models.User{}, "", domain.ValidationError{Field: "password", Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	if _, err := s.Users.FindByEmail(email); err == nil {
		return models.User{}, "", domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "could not hash password", Err: err}
	}

	now := s.now().UTC()
	user := models.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		user.UserID = fmt.Sprintf("user_%d", utils.RandomBetween(s.random(), 100000, 999999))
		if !s.Users.Exists(user.UserID) {
			break
		}
	}
	if err := s.Users.Create(user); err != nil {
		return models.User{}, "", err
	}

	token, err := s.issue(user.UserID)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(ctx, "auth", "register", "user_id="+user.UserID)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	invalid := domain.UnauthorizedError{Msg: "invalid email or password"}
	user, err := s.Users.FindByEmail(email)
	if err != nil {
		return models.User{}, "", invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", invalid
	}

	token, err := s.issue(user.UserID)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(ctx, "auth", "login", "user_id="+user.UserID)
	return user, token, nil
}

func (s *AuthService) issue(userID string) (string, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        shortuuid.New(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "could not sign token", Err: err}
	}
	s.Sessions.Add(models.Session{Token: signed, UserID: userID, ExpiresAt: expiresAt})
	return signed, nil
}

// Logout revokes the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if !s.Sessions.Remove(token) {
		return domain.UnauthorizedError{Msg: "session not found"}
	}
	utils.LogEvent(ctx, "auth", "logout", "session revoked")
	return nil
}

// Authenticate resolves a bearer token to a user id.
func (s *AuthService) Authenticate(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", domain.UnauthorizedError{Msg: "missing token"}
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.Sessions.Remove(token)
			return "", domain.UnauthorizedError{Msg: "token expired", Err: err}
		}
		return "", domain.UnauthorizedError{Msg: "invalid token", Err: err}
	}

	userID, err := s.Sessions.Resolve(token)
	if err != nil {
		return "", err
	}
	if userID != claims.Subject {
		return "", domain.UnauthorizedError{Msg: "invalid token"}
	}
	return userID, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	return s.Users.FindByID(userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (models.User, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return models.User{}, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return models.User{}, domain.ValidationError{Field: "name", Msg: "name cannot be empty"}
		}
		user.Name = name
	}
	if upd.Phone != nil {
		user.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(upd.CurrentPassword)); err != nil {
			return models.User{}, domain.UnauthorizedError{Msg: "current password is incorrect"}
		}
		if len(upd.NewPassword) < minPasswordLength {
			return models.User{}, domain.ValidationError{Field: "newPassword", Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(upd.NewPassword), s.cost())
		if err != nil {
			return models.User{}, domain.InternalError{Msg: "could not hash password", Err: err}
		}
		user.PasswordHash = string(hash)
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.Users.Update(user); err != nil {
		return models.User{}, err
	}
	utils.LogEvent(ctx, "auth", "update_profile", "user_id="+userID)
	return user, nil
}
