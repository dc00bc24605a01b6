package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles. Anything non-zero carries administrative capability.
const (
	RoleUser  = 0
	RoleAdmin = 1
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidAnswer      = errors.New("security answer does not match")
)

type Account struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"` // never expose hash in JSON
	Phone        string    `json:"phone" bson:"phone"`
	Address      string    `json:"address" bson:"address"`
	AnswerHash   string    `json:"-" bson:"answer"`
	Role         int       `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (a Account) IsAdmin() bool {
	return a.Role != RoleUser
}

type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,maxbytes=72"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Address  string `json:"address" binding:"omitempty,max=500"`
	Answer   string `json:"answer" binding:"required,maxbytes=72"`
	Role     int    `json:"-"`
}

// UpdateProfileRequest is a partial update; empty fields are left unchanged.
type UpdateProfileRequest struct {
	Name     string `json:"name" binding:"omitempty,max=120"`
	Password string `json:"password" binding:"omitempty,min=6,maxbytes=72"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Address  string `json:"address" binding:"omitempty,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Answer      string `json:"answer" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,maxbytes=72"`
}

// NormalizeEmail is applied before every store and lookup, so matching is
// case-insensitive and whitespace-tolerant.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims free-text fields and normalizes the email in place.
func (r *CreateAccountRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.Answer = strings.TrimSpace(r.Answer)
}

// New builds an Active account from an already-validated request and the
// hashes produced for its secrets.
func New(req CreateAccountRequest, passwordHash, answerHash string) Account {
	now := time.Now().UTC()

	return Account{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Phone:        req.Phone,
		Address:      req.Address,
		AnswerHash:   answerHash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
