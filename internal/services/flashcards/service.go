package flashcards

import (
	"context"
	"fmt"
	"time"

	"mediflash/config"
	"mediflash/internal/core/flashcard"
	"mediflash/internal/database/model"
	"mediflash/pkg/logger"
	"mediflash/pkg/validate"

	"github.com/google/uuid"
)

// SaveInput is a card the user chose to keep, plus the settings it was generated with.
type SaveInput struct {
	Type  string `json:"type" validate:"omitempty,max=32"`
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
	Tag   string `json:"tag" validate:"omitempty,max=255"`
	Deck  string `json:"deck" validate:"omitempty,max=255"`
	Mode  string `json:"mode" validate:"required,oneof=conceptual clinical board"`
	Level string `json:"level" validate:"required,oneof=basic intern resident"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Save strips markup, validates and stores in. Rule failures come back as
// *validate.Error and nothing is written.
func (s *Service) Save(ctx context.Context, in SaveInput) (*model.Flashcard, error) {
	card := flashcard.Flashcard{
		Type:  flashcard.Type(in.Type),
		Front: in.Front,
		Back:  in.Back,
		Tag:   in.Tag,
		Deck:  in.Deck,
	}.Clean()
	in.Type, in.Front, in.Back, in.Tag, in.Deck = string(card.Type), card.Front, card.Back, card.Tag, card.Deck

	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	card = card.WithDefaults()

	rec := &model.Flashcard{
		ID:        uuid.NewString(),
		Type:      string(card.Type),
		Front:     card.Front,
		Back:      card.Back,
		Tag:       card.Tag,
		Deck:      card.Deck,
		Mode:      in.Mode,
		Level:     in.Level,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save flashcard: %w", err)
	}
	logger.WithFields(map[string]interface{}{
		"id":   rec.ID,
		"type": rec.Type,
		"deck": rec.Deck,
	}).Infof("%v: flashcard saved", config.ModuleFlashcards)
	return rec, nil
}

// List returns stored cards newest first.
func (s *Service) List(ctx context.Context) ([]model.Flashcard, error) {
	cards, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}
	return cards, nil
}

// Get returns one stored card. Ids that are not UUIDs are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*model.Flashcard, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	card, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get flashcard %s: %w", id, err)
	}
	return card, nil
}
