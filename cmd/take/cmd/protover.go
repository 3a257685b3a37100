package cmd

import (
	"fmt"

	"github.com/mmcloughlin/take/protover"
	"github.com/spf13/cobra"
)

// protoverCmd represents the protover command
var protoverCmd = &cobra.Command{
	Use:   "protover LINE...",
	Short: "Parse and normalize protocol version lines",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parseProtover(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(protoverCmd)
}

func parseProtover(cmd *cobra.Command, lines []string) error {
	r, err := newRunner("protover")
	if err != nil {
		return err
	}
	defer r.Close()

	for i, line := range lines {
		name := fmt.Sprintf("arg%d", i)
		err := r.Bytes(name, []byte(line), func(_ string, b []byte) (int, error) {
			p, err := protover.Parse(string(b))
			if err != nil {
				return 0, err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return len(p), nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
