package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mroshb/film_catalog/internal/config"
	"github.com/mroshb/film_catalog/internal/database"
	"github.com/mroshb/film_catalog/internal/reports"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/internal/repositories/postgres"
)

func main() {
	out := flag.String("out", "popular.xlsx", "report file to write")
	count := flag.Int("count", 100, "number of films in the report")
	genreID := flag.Uint("genre", 0, "only films of this genre (0 for all)")
	year := flag.Int("year", 0, "only films released this year (0 for all)")
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

	query := repositories.PopularQuery{Count: *count}
	if *genreID != 0 {
		g := *genreID
		query.GenreID = &g
	}
	if *year != 0 {
		y := *year
		query.Year = &y
	}

	films, err := postgres.NewLikeStore(db).Popular(context.Background(), query)
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	if err := reports.WritePopular(f, films, time.Now()); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Wrote %d films to %s\n", len(films), *out)
}
