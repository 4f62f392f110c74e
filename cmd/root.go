package cmd

import (
	"fmt"
	"os"

	"github.com/kashguard/go-payment-intents/cmd/db"
	"github.com/kashguard/go-payment-intents/cmd/intent"
	"github.com/kashguard/go-payment-intents/cmd/probe"
	"github.com/kashguard/go-payment-intents/cmd/token"
	"github.com/kashguard/go-payment-intents/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "app",
	Short:   config.ModuleName,
	Long:    config.ModuleName + " turns cart totals into scannable payment requests and tracks them through provider authorization.",
	Version: config.GetFormattedBuildArgs(),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newServer(),
		db.New(),
		probe.New(),
		intent.New(),
		token.New(),
	)
}
