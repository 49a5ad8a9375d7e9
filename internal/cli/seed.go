package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/authors"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/entities"
)

// SeedCommand fills an empty catalog with sample authors and books.
type SeedCommand struct {
	DatabasePath string
	Fresh        bool
	Force        bool

	Out io.Writer
}

func NewSeedCommand(cfg *config.Config) *SeedCommand {
	return &SeedCommand{DatabasePath: cfg.Database.Path, Out: os.Stdout}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")
	fs.BoolVar(&cmd.Fresh, "fresh", false, "Delete the database file before seeding")
	fs.BoolVar(&cmd.Force, "force", false, "Seed even when the catalog already has authors or books")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Populate the catalog with sample public domain authors and books.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed -db ./sample.db -fresh\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	if cmd.Fresh {
		if err := os.Remove(cmd.DatabasePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	db, err := database.NewDatabase(cmd.DatabasePath, "silent")
	if err != nil {
		return err
	}
	defer db.Close()

	authorRepo := authors.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)

	if !cmd.Force {
		authorCount, err := authorRepo.Count()
		if err != nil {
			return err
		}
		bookCount, err := bookRepo.Count()
		if err != nil {
			return err
		}
		if authorCount+bookCount > 0 {
			return fmt.Errorf("catalog is not empty (%d authors, %d books); use -force to seed anyway", authorCount, bookCount)
		}
	}

	ids := make(map[string]uint, len(sampleAuthors))
	for _, a := range sampleAuthors {
		author := a
		if err := authorRepo.Create(&author); err != nil {
			return err
		}
		ids[author.Name] = author.ID
	}

	for _, s := range sampleBooks {
		book := s.book()
		authorIDs := lo.FilterMap(s.Authors, func(name string, _ int) (uint, bool) {
			id, ok := ids[name]
			return id, ok
		})
		if err := bookRepo.Create(&book, authorIDs); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.Out, "Seeded %d authors and %d books into %s\n", len(sampleAuthors), len(sampleBooks), cmd.DatabasePath)
	return nil
}

type sampleBook struct {
	Title   string
	ISBN    string
	Year    int
	Month   time.Month
	Day     int
	Price   entities.Price
	Genre   string
	Authors []string
}

func (s sampleBook) book() entities.Book {
	b := entities.Book{Title: s.Title, Genre: s.Genre}
	if s.ISBN != "" {
		b.ISBN = lo.ToPtr(s.ISBN)
	}
	if s.Year != 0 {
		b.PublicationDate = lo.ToPtr(entities.NewDate(s.Year, s.Month, s.Day))
	}
	if s.Price != 0 {
		b.Price = lo.ToPtr(s.Price)
	}
	return b
}

var sampleAuthors = []entities.Author{
	{Name: "Jane Austen", Bio: "English novelist of the Regency era.", BirthDate: lo.ToPtr(entities.NewDate(1775, time.December, 16))},
	{Name: "Charles Dickens", Bio: "Victorian novelist and social critic.", BirthDate: lo.ToPtr(entities.NewDate(1812, time.February, 7))},
	{Name: "Mary Shelley", Email: lo.ToPtr("mary@example.com"), BirthDate: lo.ToPtr(entities.NewDate(1797, time.August, 30))},
	{Name: "Percy Bysshe Shelley", Bio: "English Romantic poet."},
	{Name: "Marcus Aurelius", Bio: "Roman emperor and Stoic philosopher."},
	{Name: "Arthur Conan Doyle", BirthDate: lo.ToPtr(entities.NewDate(1859, time.May, 22))},
}

var sampleBooks = []sampleBook{
	{Title: "Pride and Prejudice", ISBN: "9780141439518", Year: 1813, Month: time.January, Day: 28, Price: entities.NewPrice(12, 99), Genre: "Romance", Authors: []string{"Jane Austen"}},
	{Title: "Emma", ISBN: "9780141439587", Year: 1815, Month: time.December, Day: 23, Price: entities.NewPrice(9, 50), Genre: "Romance", Authors: []string{"Jane Austen"}},
	{Title: "Great Expectations", ISBN: "9780141439563", Year: 1861, Month: time.August, Day: 1, Price: entities.NewPrice(14, 0), Genre: "Fiction", Authors: []string{"Charles Dickens"}},
	{Title: "A Tale of Two Cities", Price: entities.NewPrice(55, 0), Genre: "Historical", Authors: []string{"Charles Dickens"}},
	{Title: "Frankenstein", ISBN: "9780141439471", Year: 1818, Month: time.January, Day: 1, Price: entities.NewPrice(74, 90), Genre: "Horror", Authors: []string{"Mary Shelley", "Percy Bysshe Shelley"}},
	{Title: "Meditations", Genre: "Philosophy", Authors: []string{"Marcus Aurelius"}},
	{Title: "A Study in Scarlet", Year: 1887, Month: time.November, Day: 1, Price: entities.NewPrice(120, 0), Genre: "Mystery", Authors: []string{"Arthur Conan Doyle"}},
	{Title: "Anonymous Pamphlet", Genre: "Essay"},
}
