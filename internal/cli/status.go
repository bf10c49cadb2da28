package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/pawstay/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the connection to the server",
		Long:  "Shows the configured server and staff name and tests that the server is reachable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), out(cmd))
		},
	}
}

func runStatus(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serverURL := getServerURL()
	actor := getActor()

	fmt.Fprintf(w, "Server:  %s\n", serverURL)
	if actor == "" {
		fmt.Fprintln(w, "Actor:   not configured (server records \"staff\")")
	} else {
		fmt.Fprintf(w, "Actor:   %s\n", actor)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.New(serverURL, actor).Health(ctx); err != nil {
		fmt.Fprintf(w, "Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}
	fmt.Fprintln(w, "Status:  ✓ connected")
	return nil
}
