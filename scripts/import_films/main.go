package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mroshb/film_catalog/internal/config"
	"github.com/mroshb/film_catalog/internal/database"
	"github.com/mroshb/film_catalog/internal/reports"
	"github.com/mroshb/film_catalog/internal/repositories/postgres"
)

func main() {
	path := flag.String("file", "films.xlsx", "workbook to import")
	flag.Parse()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate:", err)
	}
	if err := database.SeedGenres(db); err != nil {
		log.Fatal("failed to seed genres:", err)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	films, rowErrs, err := reports.ReadFilms(f)
	if err != nil {
		log.Fatal(err)
	}
	for _, rowErr := range rowErrs {
		fmt.Printf("Skipping %v\n", rowErr)
	}

	catalog := postgres.NewCatalogStore(db)
	ctx := context.Background()
	imported := 0
	for i := range films {
		if err := catalog.CreateFilm(ctx, &films[i]); err != nil {
			fmt.Printf("Error importing %q: %v\n", films[i].Name, err)
			continue
		}
		imported++
	}

	fmt.Printf("Import complete! Imported %d films, skipped %d rows.\n", imported, len(rowErrs)+len(films)-imported)
}
