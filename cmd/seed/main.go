package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kestrelworks/docvault/backend/internal/database"
	"github.com/kestrelworks/docvault/backend/internal/models"
)

// Seeds a local development database with an admin account, a demo user and
// a handful of documents.
func main() {
	db, err := database.Open(filepath.Join("data", "docvault.db"))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	admin := models.User{
		UUID:     uuid.NewString(),
		Username: "admin",
		Email:    "admin@example.com",
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword("admin123"); err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}

	demo := models.User{
		UUID:     uuid.NewString(),
		Username: "demo",
		Email:    "demo@example.com",
		FullName: "Demo User",
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := demo.SetPassword("demo1234"); err != nil {
		log.Fatal("Failed to hash demo password:", err)
	}

	for _, user := range []*models.User{&admin, &demo} {
		result := db.Where("username = ?", user.Username).FirstOrCreate(user)
		if result.Error != nil {
			log.Fatal("Failed to seed user:", result.Error)
		}
	}
	fmt.Println("✓ Seeded accounts: admin / demo")

	documents := []models.Document{
		{
			UUID:     uuid.NewString(),
			Title:    "Welcome to DocVault",
			Content:  "Public onboarding notes for new users.",
			Category: "guides",
			Tags:     "onboarding,help",
			IsPublic: true,
			OwnerID:  admin.ID,
		},
		{
			UUID:     uuid.NewString(),
			Title:    "Operations Runbook",
			Content:  "Private operational procedures.",
			Category: "operations",
			Tags:     "runbook",
			IsPublic: false,
			OwnerID:  admin.ID,
		},
		{
			UUID:     uuid.NewString(),
			Title:    "Demo Scratchpad",
			Content:  "A private place to try things out.",
			Category: "notes",
			IsPublic: false,
			OwnerID:  demo.ID,
		},
	}

	for i := range documents {
		result := db.Where("title = ? AND owner_id = ?", documents[i].Title, documents[i].OwnerID).FirstOrCreate(&documents[i])
		if result.Error != nil {
			log.Fatal("Failed to seed document:", result.Error)
		}
	}
	fmt.Printf("✓ Seeded %d documents\n", len(documents))
}
