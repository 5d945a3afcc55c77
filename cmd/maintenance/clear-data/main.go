package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tripstack/travel-backend/internal/config"
	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/docstore"
)

// Dev reset: wipes every row from both stores so the seeder can start from
// a clean slate. Never point this at production.
func main() {
	var relationalURL string
	var documentURL string
	flag.StringVar(&relationalURL, "relational-url", "", "PostgreSQL connection string (overrides RELATIONAL_URL)")
	flag.StringVar(&documentURL, "document-url", "", "MongoDB connection string (overrides DOCUMENT_URL)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	// This avoids having to pass secrets on the command line.
	_ = godotenv.Load()

	if relationalURL == "" {
		relationalURL = os.Getenv("RELATIONAL_URL")
	}
	if relationalURL == "" {
		log.Fatal("RELATIONAL_URL is not set and -relational-url was not provided")
	}
	if documentURL == "" {
		documentURL = os.Getenv("DOCUMENT_URL")
	}

	db, err := database.NewConnection(config.RelationalConfig{
		URL:          relationalURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		log.Fatalf("failed to connect to relational store: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to relational store. Truncating tables...")

	truncateSQL := `
TRUNCATE TABLE
    billing_transactions,
    booking_items,
    bookings,
    flights,
    cars,
    hotels,
    airports,
    users
RESTART IDENTITY CASCADE;`

	if _, err := db.Exec(truncateSQL); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("All relational data cleared (tables truncated, identities reset).")

	// Verify by printing row counts for each table
	tables := []string{
		"billing_transactions",
		"booking_items",
		"bookings",
		"flights",
		"cars",
		"hotels",
		"airports",
		"users",
	}

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}

	if documentURL == "" {
		fmt.Println("DOCUMENT_URL not set, leaving document store untouched")
		return
	}

	clearDocumentStore(documentURL)
}

// clearDocumentStore empties the review and clickstream collections. The
// documents go but the indexes stay, so reads keep working immediately.
func clearDocumentStore(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	dbName := os.Getenv("DOCUMENT_DB_NAME")
	if dbName == "" {
		dbName = "travel"
	}

	store, err := docstore.Connect(ctx, config.DocumentConfig{
		URL:            url,
		Database:       dbName,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to connect to document store: %v", err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Printf("failed to close document store: %v", err)
		}
	}()

	fmt.Println("Connected to document store. Clearing collections...")

	reviews, err := store.Reviews().DeleteMany(ctx, bson.D{})
	if err != nil {
		log.Fatalf("failed to clear reviews: %v", err)
	}

	events, err := store.ClickstreamEvents().DeleteMany(ctx, bson.D{})
	if err != nil {
		log.Fatalf("failed to clear clickstream events: %v", err)
	}

	fmt.Printf("Cleared %d reviews and %d clickstream events\n",
		reviews.DeletedCount, events.DeletedCount)
}
