package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/mission-control/internal/config"
	"github.com/signalsfoundry/mission-control/internal/logging"
)

// app carries state resolved once per invocation by the root command.
type app struct {
	v          *viper.Viper
	configPath string

	cfg config.Config
	log logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "mission-control",
		Short:         "Satellite mission-control simulator",
		Long:          "mission-control simulates a small satellite constellation and exposes an operator command console, a gRPC API and orbital calculators.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(a.v, a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logging.New(logging.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a YAML, TOML or JSON config file")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")

	root.AddCommand(
		newServeCmd(a),
		newConsoleCmd(a),
		newCalcCmd(),
		newFleetCmd(),
	)
	return root
}
