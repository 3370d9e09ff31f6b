package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jcmexdev/ecommerce-orders/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/telemetry"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:           "order-service",
	Short:         "Order fulfillment pipeline",
	Long:          `Validates, prices, persists and confirms orders, and audits every outcome.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		_ = v.BindPFlag("db.path", cmd.Flags().Lookup("db"))
		_ = v.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))

		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		telemetry.InitLogger(os.Stderr, cfg.Log.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./orders.yaml if present)")
	rootCmd.PersistentFlags().String("db", "",
		`sqlite database path; "" keeps orders in memory`)
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(serveCmd, processCmd, channelsCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}
