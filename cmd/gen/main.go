package main

import (
	"log"

	"mediflash/config"
	"mediflash/internal/database/model"

	"gorm.io/driver/mysql"
	"gorm.io/gen"
	"gorm.io/gorm"
)

// Generates typed query helpers for the flashcards table into internal/database/query.
func main() {
	if err := config.Init("config.yaml"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(config.Cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:       "internal/database/query",
		ModelPkgPath:  "internal/database/model",
		Mode:          gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable: true,
	})

	g.UseDB(db)
	g.ApplyBasic(model.Flashcard{})

	g.Execute()
}
