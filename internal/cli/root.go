// Package cli defines the cobra command tree for pawstay.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/evcraddock/pawstay/internal/client"
	"github.com/evcraddock/pawstay/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pawstay",
		Short:         "Run a pet daycare front desk",
		Long:          "Manage pet daycare bookings: approve requests, check pets in and out, keep daily care logs and read owner reviews. Talks to a pawstay server, or runs one with 'serve'.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path for serve (default: ~/.config/pawstay/pawstay.db)")

	root.AddCommand(
		newSubmitCmd(),
		newShowCmd(),
		newApproveCmd(),
		newRejectCmd(),
		newCheckInCmd(),
		newCheckOutCmd(),
		newLogCmd(),
		newPendingCmd(),
		newUpcomingCmd(),
		newOccupantsCmd(),
		newHistoryCmd(),
		newReviewsCmd(),
		newReviewCmd(),
		newExportCmd(),
		newServeCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag, then fallback, then
// the default path.
func openDB(fallback string) (*sql.DB, error) {
	path := flagDB
	if path == "" {
		path = fallback
	}
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the pawstay API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getActor())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// parseID parses a UUID argument.
func parseID(kind, arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %s", kind, arg)
	}
	return id, nil
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// out returns the command's output writer.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
