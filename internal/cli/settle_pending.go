package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/papersbook/storefront/internal/audit"
	"github.com/papersbook/storefront/internal/config"
	"github.com/papersbook/storefront/internal/database"
	"github.com/papersbook/storefront/internal/database/authors"
	"github.com/papersbook/storefront/internal/settlement"
)

// SettlePendingCommand settles stale pending sales from the command line.
type SettlePendingCommand struct {
	DatabasePath string
	Grace        time.Duration
	DryRun       bool
}

// NewSettlePendingCommand creates a new SettlePendingCommand
func NewSettlePendingCommand() *SettlePendingCommand {
	return &SettlePendingCommand{}
}

// ParseFlags parses command line flags
func (cmd *SettlePendingCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("settle-pending", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.DurationVar(&cmd.Grace, "grace", 10*time.Minute, "Only settle pending sales older than this")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "List stale pending sales without settling them")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s settle-pending [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Settle pending sales whose payment callback never arrived.\n\n")
		fmt.Fprintf(os.Stderr, "Each settled sale grants the buyer the book, credits the author\n")
		fmt.Fprintf(os.Stderr, "their share and records the platform fee. Already settled sales\n")
		fmt.Fprintf(os.Stderr, "are skipped, so the command is safe to re-run.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s settle-pending\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s settle-pending -grace 1h\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s settle-pending -db /data/storefront.db -dry-run\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the settle-pending command
func (cmd *SettlePendingCommand) Run() error {
	cfg := config.NewConfig()

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	authorsRepo := authors.NewRepository(db.DB)
	auditor := audit.NewAuditor(cfg.Audit.Dir)
	service := settlement.NewService(db.DB, authorsRepo, cfg.Settlement.PlatformFeeBps, auditor)

	cutoff := time.Now().Add(-cmd.Grace)

	if cmd.DryRun {
		stale, err := service.ListPending(context.Background(), cutoff)
		if err != nil {
			return fmt.Errorf("failed to list pending sales: %w", err)
		}
		fmt.Printf("%d pending sale(s) older than %s:\n", len(stale), cmd.Grace)
		for _, sale := range stale {
			fmt.Printf("  sale %d: book %d, user %d, %d cents, created %s\n",
				sale.ID, sale.BookID, sale.UserID, sale.PriceCents,
				sale.CreatedAt.Format(time.RFC3339))
		}
		return nil
	}

	settled, failed := service.SettlePending(context.Background(), cutoff)
	fmt.Printf("Settled %d sale(s), %d failure(s)\n", settled, failed)
	if failed > 0 {
		return fmt.Errorf("%d sale(s) could not be settled", failed)
	}
	return nil
}
