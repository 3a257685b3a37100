package cmd

import (
	"fmt"

	"github.com/mmcloughlin/take/torconfig"
	"github.com/spf13/cobra"
)

// torrcCmd represents the torrc command
var torrcCmd = &cobra.Command{
	Use:   "torrc FILE",
	Short: "Parse a relay configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return torrc(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(torrcCmd)
}

func torrc(cmd *cobra.Command, filename string) error {
	r, err := newRunner("torrc")
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()
	return r.File(filename, func(_ string, b []byte) (int, error) {
		cfg, err := torconfig.ParseTorrc(b)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "nickname: %s\n", cfg.Nickname)
		fmt.Fprintf(out, "address: %s\n", cfg.IP)
		fmt.Fprintf(out, "orport: %s\n", cfg.ORBindAddr())
		fmt.Fprintf(out, "contact: %s\n", cfg.Contact)
		fmt.Fprintf(out, "bandwidth: %d/%d\n", cfg.BandwidthAverage, cfg.BandwidthBurst)
		return 1, nil
	})
}
