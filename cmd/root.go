package cmd

import (
	"fmt"
	"os"

	"grocer/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	emailFlag    string
	passwordFlag string
	jsonFlag     bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "grocer",
	Short: "Grocery API client",
	Long: `grocer searches the grocery catalogue and manages a customer's basket
through the remote grocery web service. It can also serve the same
operations over HTTP and export listings to object storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level gives readable ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&emailFlag, "email", "", "Customer e-mail; anonymous when empty")
	RootCmd.PersistentFlags().StringVar(&passwordFlag, "password", "", "Customer password")
	RootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print results as JSON")
}
