package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the parking command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parking",
		Short: "Parking facility service",
		Long: `Parking facility service: gate admission, tickets, tariffs and payments
for a single facility, exposed over HTTP and fed by gate controllers over SQS.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewTariffCommand())
	cmd.AddCommand(NewSimulateCommand())

	return cmd
}
