package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/services"
)

// OverdueReportCommand prints every open loan past its due date.
type OverdueReportCommand struct {
	DatabasePath string

	out io.Writer
}

func NewOverdueReportCommand() *OverdueReportCommand {
	return &OverdueReportCommand{out: os.Stdout}
}

func (cmd *OverdueReportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("overdue-report", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s overdue-report [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List overdue loans with the late fee owed today.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *OverdueReportCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	loans, err := services.NewReportService(db.Store()).OverdueLoans()
	if err != nil {
		return err
	}

	return writeOverdueLoans(cmd.out, loans)
}

func writeOverdueLoans(out io.Writer, loans []services.OverdueLoan) error {
	if len(loans) == 0 {
		fmt.Fprintln(out, "No overdue loans.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATRON\tBOOK\tTITLE\tDUE\tDAYS\tFEE")
	for _, loan := range loans {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
			loan.PatronID, loan.BookID, loan.Title,
			loan.DueDate.Format("2006-01-02"), loan.Fee.DaysOverdue, loan.Fee.Amount)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal overdue loans: %d\n", len(loans))
	return nil
}
