package main

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/kut/vm"
)

// cfg holds the settings of the command being executed: flags, KUT_
// environment variables and the config file, in that order of precedence.
var cfg = viper.New()

func newRootCmd() *cobra.Command {
	cfg = viper.New()
	cmd := &cobra.Command{
		Use:           "kut",
		Short:         "Run and inspect Kut bytecode programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			processGlobalFlags()
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.kut.toml)")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")
	flags.Int("max-call-depth", vm.DefaultMaxCallDepth, "maximum call nesting depth")
	for _, name := range []string{"config", "log-level", "no-color", "max-call-depth"} {
		cfg.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(newRunCmd(), newDisCmd(), newServeCmd(), newVersionCmd())
	return cmd
}

// initConfig reads the config file, if any, and enables KUT_ environment
// variables for every flag.
func initConfig() error {
	cfg.SetEnvPrefix("kut")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	if path := cfg.GetString("config"); path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return err
		}
		cfg.SetConfigFile(expanded)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cannot read config %s: %w", expanded, err)
		}
		return nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	cfg.AddConfigPath(home)
	cfg.SetConfigName(".kut")
	cfg.SetConfigType("toml")
	if err := cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("cannot read config: %w", err)
		}
	}
	return nil
}
