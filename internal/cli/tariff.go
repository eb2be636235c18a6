package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/tariffs"
)

func NewTariffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tariff",
		Short: "Work with tariff files",
	}
	cmd.AddCommand(newTariffValidateCommand())
	return cmd
}

func newTariffValidateCommand() *cobra.Command {
	var printTariff bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse and validate a YAML tariff file",
		Long: `Parse and validate a YAML tariff file.

With --print the resolved week is written back in per-minute prices, one
list per day, which is the form the service stores.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tariffs.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok (%d priced intervals)\n", args[0], countEntries(t))
			if printTariff {
				return tariffs.Encode(out, t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printTariff, "print", false, "print the resolved tariff")
	return cmd
}

func countEntries(t domain.Tariff) int {
	n := 0
	for _, day := range t {
		n += len(day)
	}
	return n
}
