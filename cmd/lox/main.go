package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/axelmagn/lox/memory"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var red = color.New(color.FgRed).SprintFunc()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lox",
		Short:         "Inspect lox bytecode chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(); err != nil {
				return err
			}
			if viper.GetBool("no-color") {
				color.NoColor = true
			}
			if err := configureLogging(viper.GetString("log-level")); err != nil {
				return err
			}
			memory.OnFatal = func(err error) {
				log.Fatal().Err(err).Msg("memory allocation failed")
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.lox.yaml)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("no-color", flags.Lookup("no-color"))
	viper.BindPFlag("log-level", flags.Lookup("log-level"))

	root.AddCommand(newDisCmd(), newVersionCmd())
	return root
}

func readConfig() error {
	viper.SetEnvPrefix("lox")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if path := viper.GetString("config"); path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return err
		}
		viper.SetConfigFile(expanded)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", expanded, err)
		}
		return nil
	}

	home, err := homedir.Dir()
	if err != nil {
		// No home directory: run with flags and environment only.
		return nil
	}
	path := filepath.Join(home, ".lox.yaml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

func configureLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: color.NoColor,
	})
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}
