package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/store"

	"go.uber.org/zap"
)

var (
	genres = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}

	authors = []string{"Ursula Le Guin", "Frank Herbert", "Jane Austen", "Toni Morrison", "Haruki Murakami", "Chinua Achebe", "Italo Calvino", "Octavia Butler"}

	words = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
)

func main() {
	count := flag.Int("count", 1000, "number of books to insert")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if err := run(*count, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(count int, seed int64) error {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.StoreDriver == store.DriverMemory {
		log.Warn("seeding the in-memory store has no lasting effect")
	}

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(ctx) }()

	svc := book.NewService(book.NewStoreRepo(db))
	log.Info("generating books", zap.Int("count", count), zap.Int64("seed", seed))

	inserted, err := insertBooks(ctx, svc, generateBooks(rand.New(rand.NewSource(seed)), count), log)
	if err != nil {
		return err
	}

	log.Info("seed complete", zap.Int("inserted", inserted))
	return nil
}

func generateBooks(rng *rand.Rand, count int) []book.Details {
	books := make([]book.Details, 0, count)
	for i := 0; i < count; i++ {
		title := fmt.Sprintf("Book Title %d - %s", i+1, randomWord(rng))
		books = append(books, book.Details{
			Image:           fmt.Sprintf("https://covers.example.com/%d.jpg", i+1),
			Title:           title,
			Author:          authors[rng.Intn(len(authors))],
			Genre:           genres[rng.Intn(len(genres))],
			PublicationDate: fmt.Sprintf("%d", 1950+rng.Intn(75)),
		})
	}
	return books
}

func insertBooks(ctx context.Context, svc *book.Service, books []book.Details, log *zap.Logger) (int, error) {
	for i, d := range books {
		if _, err := svc.Create(ctx, d); err != nil {
			return i, fmt.Errorf("inserting book %d: %w", i+1, err)
		}
		if (i+1)%1000 == 0 {
			log.Info("progress", zap.Int("inserted", i+1), zap.Int("total", len(books)))
		}
	}
	return len(books), nil
}

func randomWord(rng *rand.Rand) string {
	return words[rng.Intn(len(words))]
}
