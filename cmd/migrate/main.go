package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aa196883/boardgame-crud/internal/store"
)

func main() {
	dbPath := getEnv("DB_PATH", "games.db")
	migrationsPath := getEnv("MIGRATIONS_PATH", "./migrations")

	fmt.Println("=== Running Database Migrations ===")
	fmt.Printf("Database: %s\n", dbPath)

	if err := store.RunMigrations(store.MigrationConfig{
		DatabasePath:   dbPath,
		MigrationsPath: migrationsPath,
	}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	fmt.Println("✓ Database migrations completed successfully!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
