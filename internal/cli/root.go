package cli

import (
	"github.com/spf13/cobra"

	"github.com/Eursukkul/table-booking/config"
	"github.com/Eursukkul/table-booking/pkg/logging"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tablebooking",
		Short:         "Front-desk table reservation ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewImportCmd())
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}
