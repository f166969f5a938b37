package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const TableNameFlashcard = "flashcards"

// Flashcard mapped from table <flashcards>
type Flashcard struct {
	ID        string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Type      string    `gorm:"column:type;type:varchar(32);not null;default:cloze" json:"type"`
	Front     string    `gorm:"column:front;type:text;not null" json:"front"`
	Back      string    `gorm:"column:back;type:text;not null" json:"back"`
	Tag       string    `gorm:"column:tag;type:varchar(255);not null;default:Medical" json:"tag"`
	Deck      string    `gorm:"column:deck;type:varchar(255);not null;default:Default" json:"deck"`
	Mode      string    `gorm:"column:mode;type:varchar(32);not null" json:"mode"`
	Level     string    `gorm:"column:level;type:varchar(32);not null" json:"level"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_flashcards_created_at" json:"createdAt"`
}

// TableName Flashcard's table name
func (*Flashcard) TableName() string {
	return TableNameFlashcard
}

// BeforeCreate assigns a random id to new rows.
func (f *Flashcard) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

func (f Flashcard) FrontText() string { return f.Front }
func (f Flashcard) BackText() string  { return f.Back }
