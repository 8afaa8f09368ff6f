// Command seed_catalog fills a storefront database with a small sample
// catalog: authors, priced and free books, a curated collection, reviews
// and a reader account. Useful for local development and demos.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/papersbook/storefront/internal/auth"
	"github.com/papersbook/storefront/internal/config"
	"github.com/papersbook/storefront/internal/database"
	"github.com/papersbook/storefront/internal/database/collections"
	"github.com/papersbook/storefront/internal/database/reviews"
	"github.com/papersbook/storefront/internal/entities"
)

type seedBook struct {
	Title        string
	Genre        string
	Summary      string
	PriceCents   int64
	InCarousel   bool
	AuthorOffset int
	Episodes     []string
}

var seedAuthors = []entities.Author{
	{Name: "Amara Nwosu", Bio: "Serial novelist writing weekly episodes."},
	{Name: "Jean-Paul Essomba", Bio: "Short fiction and essays."},
	{Name: "Linda Mbarga", Bio: "Romance and drama series."},
}

var seedBooks = []seedBook{
	{
		Title:        "The Harmattan Letters",
		Genre:        "drama",
		Summary:      "A family drama told through letters that cross the Sahel.",
		PriceCents:   150000,
		InCarousel:   true,
		AuthorOffset: 0,
		Episodes:     []string{"The first letter", "Crossing Garoua", "What the wind kept"},
	},
	{
		Title:        "Midnight at Marché Central",
		Genre:        "thriller",
		Summary:      "A night vendor witnesses something she should not have.",
		PriceCents:   200000,
		AuthorOffset: 1,
		Episodes:     []string{"Closing time", "The blue kiosk"},
	},
	{
		Title:        "Rainy Season Poems",
		Genre:        "poetry",
		Summary:      "A free collection of poems about the long rains.",
		PriceCents:   0,
		AuthorOffset: 1,
	},
	{
		Title:        "Douala Hearts",
		Genre:        "romance",
		Summary:      "Two strangers keep missing each other on the Bonabéri ferry.",
		PriceCents:   100000,
		InCarousel:   true,
		AuthorOffset: 2,
		Episodes:     []string{"The ferry", "The storm", "Low tide", "High tide"},
	},
}

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "Path to the database file")
	password := flag.String("password", "reader-password", "Password for the seeded reader account")
	flag.Parse()

	if err := run(*dbPath, *password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, password string) error {
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	authors := make([]entities.Author, len(seedAuthors))
	copy(authors, seedAuthors)
	for i := range authors {
		if err := db.DB.Create(&authors[i]).Error; err != nil {
			return fmt.Errorf("failed to create author %q: %w", authors[i].Name, err)
		}
	}
	log.Printf("Created %d authors", len(authors))

	books := make([]entities.Book, 0, len(seedBooks))
	for _, sb := range seedBooks {
		book := entities.Book{
			Title:      sb.Title,
			Genre:      sb.Genre,
			Summary:    sb.Summary,
			PriceCents: sb.PriceCents,
			InCarousel: sb.InCarousel,
			AuthorID:   authors[sb.AuthorOffset].ID,
			Verdict:    entities.VerdictAccepted,
		}
		for i, title := range sb.Episodes {
			book.Episodes = append(book.Episodes, entities.Episode{
				Number: i + 1,
				Title:  title,
			})
		}
		if err := db.DB.Create(&book).Error; err != nil {
			return fmt.Errorf("failed to create book %q: %w", sb.Title, err)
		}
		books = append(books, book)
	}
	log.Printf("Created %d books", len(books))

	collectionsRepo := collections.NewRepository(db.DB)
	if _, err := collectionsRepo.CreateCollection("Editor's picks", "", books[:2]); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	log.Printf("Created collection %q", "Editor's picks")

	authService := auth.NewService(db.DB, config.Auth{BcryptCost: 10})
	reader, err := authService.CreateUser("reader", "reader@example.com", password, entities.UserRoleReader)
	if err != nil {
		return fmt.Errorf("failed to create reader account: %w", err)
	}
	log.Printf("Created reader account %q", reader.Username)

	reviewsRepo := reviews.NewRepository(db.DB)
	seedReviews := []struct {
		book   int
		rating int
		text   string
	}{
		{0, 5, "Could not put it down."},
		{0, 4, "The middle episodes drag a little."},
		{3, 5, "Best romance on the platform."},
	}
	for _, sr := range seedReviews {
		if _, err := reviewsRepo.AddReview(books[sr.book].ID, reader.ID, reader.Username, sr.rating, sr.text); err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
	}
	log.Printf("Created %d reviews", len(seedReviews))

	log.Printf("Seed complete: %s", dbPath)
	return nil
}
