package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "take",
	Short: "Parse Tor directory protocol data",

	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	dump bool
)

func init() {
	Register(rootCmd.PersistentFlags(), logging, metrics)
	rootCmd.PersistentFlags().BoolVar(&dump, "dump", false, "hex dump inputs that fail to parse")
}

// Execute is the entry point for the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
