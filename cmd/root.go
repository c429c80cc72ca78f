package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"discover-server/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "discover",
	Short: "Serves nearby restaurant and cafe discovery sessions",
	Long: `discover runs the discovery filtering pipeline behind an HTTP API: clients open a
session around a location, edit filters, and read debounced, open-now filtered results.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./discover.yaml)")
	rootCmd.PersistentFlags().String("backend", config.BACKEND, "search backend: rpc, postgres, redis or mock")
	rootCmd.PersistentFlags().String("env", config.ENV, "environment name; prod enables the s3 media store")
	rootCmd.PersistentFlags().String("redis-addr", config.REDIS_DB_ADDRESS, "redis address")

	rootCmd.AddCommand(newServeCmd(), newSeedCmd())
}

// loadConfig reads file, environment and the flags of cmd, flags winning.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	for key, flag := range map[string]string{
		"backend":    "backend",
		"env":        "env",
		"redis_addr": "redis-addr",
		"http_addr":  "addr",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return config.Load(v, cfgFile)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
