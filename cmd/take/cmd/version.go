package cmd

import (
	"fmt"
	"io"

	"github.com/mmcloughlin/take/meta"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print git revision",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	if meta.Populated() {
		rootCmd.AddCommand(versionCmd)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, meta.GitSHAFull)
	fmt.Fprintln(w, meta.Platform)
}
