package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itiky/employee-sync/config"
)

const (
	FlagEnvFiles = "env-file"
)

// appConfig is loaded before any subcommand runs.
var appConfig *config.Config

// rootCmd is a base command.
var rootCmd = &cobra.Command{
	Use:   "employee-sync",
	Short: "Employee records client/server",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envFiles, err := cmd.Flags().GetStringSlice(FlagEnvFiles)
		if err != nil {
			log.Fatalf("%s flag: %v", FlagEnvFiles, err)
		}

		n, err := config.LoadEnv(envFiles)
		if err != nil {
			log.Fatalf("loading env files: %v", err)
		}

		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg.SetupLogger()
		appConfig = cfg

		log.Debugf("env files loaded: %d", n)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("rootCmd.Execute: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSlice(FlagEnvFiles, []string{".env", ".env.local"}, "(optional) .env files to load")
}
