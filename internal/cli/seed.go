package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/database"
)

// SeedCommand loads the sample catalog into an empty database.
type SeedCommand struct {
	DatabasePath string

	out io.Writer
	now func() time.Time
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{out: os.Stdout, now: time.Now}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Insert the sample books and loan. Does nothing if the catalog is not empty.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SeedSampleData(cmd.now().UTC()); err != nil {
		return err
	}

	books, err := db.Store().GetAllBooks()
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}
	fmt.Fprintf(cmd.out, "Catalog contains %d books\n", len(books))
	return nil
}
