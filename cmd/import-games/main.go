package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aa196883/boardgame-crud/internal/importer"
	"github.com/aa196883/boardgame-crud/internal/store"
)

func main() {
	csvPath := flag.String("csv", "games_DB.csv", "source CSV path")
	dbPath := flag.String("db", "games.db", "target SQLite file")
	migrationsPath := flag.String("migrations", "./migrations", "migrations directory")
	flag.Parse()

	ctx := context.Background()

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer file.Close()

	games, err := importer.ReadGames(file)
	if err != nil {
		log.Fatalf("Failed to parse CSV: %v", err)
	}

	if err := store.RunMigrations(store.MigrationConfig{
		DatabasePath:   *dbPath,
		MigrationsPath: *migrationsPath,
	}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	st, err := store.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	count, err := importer.Import(ctx, st, games)
	if err != nil {
		log.Fatalf("Import stopped after %d games: %v", count, err)
	}

	fmt.Printf("%d jeux importés dans %s.\n", count, *dbPath)
}
