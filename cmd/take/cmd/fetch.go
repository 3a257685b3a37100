package cmd

import (
	"fmt"

	"github.com/mmcloughlin/take/log"
	"github.com/mmcloughlin/take/tordir"
	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and parse directory authority descriptors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch(cmd)
	},
}

func init() {
	authorities.Attach(fetchCmd.Flags())

	rootCmd.AddCommand(fetchCmd)
}

func fetch(cmd *cobra.Command) error {
	r, err := newRunner("fetch")
	if err != nil {
		return err
	}
	defer r.Close()

	var failed error
	for _, addr := range authorities.Addresses() {
		l := log.ForInput(r.log, addr)
		err := r.metrics.Parse(func() (int, error) {
			sd, err := tordir.FetchAuthorityDescriptor(addr, l)
			if err != nil {
				return 0, err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeServer(addr, sd))
			return 1, nil
		})
		if err != nil {
			log.Err(l, err, "fetch failed")
			failed = err
		}
	}
	return failed
}
