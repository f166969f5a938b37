package flashcards

import (
	"context"
	"errors"

	"mediflash/internal/database"
	"mediflash/internal/database/model"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("flashcard not found")

// Store persists saved flashcards. Rows are only ever inserted.
type Store interface {
	Create(ctx context.Context, card *model.Flashcard) error
	List(ctx context.Context) ([]model.Flashcard, error)
	Get(ctx context.Context, id string) (*model.Flashcard, error)
}

// GormStore keeps flashcards in the flashcards table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, card *model.Flashcard) error {
	return database.CreateEntity(ctx, s.db, card)
}

// List returns every stored card, newest first.
func (s *GormStore) List(ctx context.Context) ([]model.Flashcard, error) {
	return database.ListEntities[model.Flashcard](ctx, s.db, "created_at desc", 0)
}

func (s *GormStore) Get(ctx context.Context, id string) (*model.Flashcard, error) {
	card, err := database.GetEntityByID[model.Flashcard](ctx, s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return card, err
}
