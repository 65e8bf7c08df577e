package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/services"
)

// PatronStatusCommand prints a patron's open loans, fees and history.
type PatronStatusCommand struct {
	DatabasePath string
	PatronID     string

	out io.Writer
}

func NewPatronStatusCommand() *PatronStatusCommand {
	return &PatronStatusCommand{out: os.Stdout}
}

func (cmd *PatronStatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("patron-status", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.PatronID, "patron", "", "Six digit patron ID (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s patron-status [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show a patron's borrowed books, late fees and borrowing history.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s patron-status -patron 123456\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.PatronID == "" {
		fs.Usage()
		return fmt.Errorf("patron is required")
	}

	return nil
}

func (cmd *PatronStatusCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	report, err := services.NewReportService(db.Store()).PatronStatus(cmd.PatronID)
	if err != nil {
		return err
	}

	writePatronReport(cmd.out, report)
	return nil
}

func writePatronReport(out io.Writer, report *services.PatronReport) {
	fmt.Fprintf(out, "Patron %s\n", report.PatronID)
	fmt.Fprintf(out, "Books currently borrowed: %d\n", report.CurrentlyBorrowedCount)
	for _, loan := range report.CurrentlyBorrowed {
		fmt.Fprintf(out, "  - [%d] %s, due %s", loan.BookID, loan.Title, loan.DueDate.Format("2006-01-02"))
		if !loan.Fee.IsZero() {
			fmt.Fprintf(out, " (%d days overdue, fee %s)", loan.Fee.DaysOverdue, loan.Fee.Amount)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Total late fees owed: %s\n", report.TotalLateFeesOwed)

	fmt.Fprintf(out, "Borrowing history: %d loans\n", len(report.BorrowingHistory))
	for _, entry := range report.BorrowingHistory {
		returned := "not returned"
		if entry.ReturnDate != nil {
			returned = "returned " + entry.ReturnDate.Format("2006-01-02")
		}
		fmt.Fprintf(out, "  - [%d] %s, borrowed %s, %s\n",
			entry.BookID, entry.Title, entry.BorrowDate.Format("2006-01-02"), returned)
	}
}
