package category

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrDuplicateName = errors.New("category name already exists")
)

type Category struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Slug      string    `json:"slug" bson:"slug"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=80"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=80"`
}

// Slugify lowercases name and joins its letter/digit runs with single hyphens.
// Names that differ only in case or punctuation share a slug, which is what
// uniqueness is enforced on.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

func New(name string) Category {
	now := time.Now().UTC()
	name = strings.TrimSpace(name)

	return Category{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
