// Command wagerctl is a client-side helper for the wager pool API: it creates
// keys, derives game addresses offline and signs requests.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wagerctl",
		Short:         "Wager pool client tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(keygenCmd(), deriveCmd(), signCmd())

	return cmd
}
