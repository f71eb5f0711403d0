package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"payments-register/internal/config"
	"payments-register/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "payments-register",
		Short:        "Payment registration service for own portfolios",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(envFile); err != nil {
				logrus.Debugf("no %s file found, using system env or defaults", envFile)
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	serve := newServeCmd()
	root.AddCommand(serve, newCheckCmd())

	// serve is the default when no subcommand is given
	root.RunE = serve.RunE

	return root
}

func loadConfig() (config.AppConfig, *logrus.Logger, error) {
	cfg := config.Load()
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}
