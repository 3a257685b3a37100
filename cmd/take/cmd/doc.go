package cmd

import (
	"fmt"
	"sync"

	"github.com/mmcloughlin/take/tordir"
	"github.com/spf13/cobra"
)

// docCmd represents the doc command
var docCmd = &cobra.Command{
	Use:   "doc FILE...",
	Short: "Parse directory documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return doc(cmd, args)
	},
}

var (
	descriptor bool
)

func init() {
	docCmd.Flags().BoolVarP(&descriptor, "descriptor", "d", false, "interpret documents as server descriptors")

	rootCmd.AddCommand(docCmd)
}

func doc(cmd *cobra.Command, filenames []string) error {
	r, err := newRunner("tordir")
	if err != nil {
		return err
	}
	defer r.Close()

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	return r.Files(filenames, func(name string, b []byte) (int, error) {
		d, err := tordir.Parse(b)
		if err != nil {
			return 0, err
		}

		summary := fmt.Sprintf("%s: %d items", name, len(d.Items()))
		if descriptor {
			sd, err := tordir.NewServerDescriptorFromDocument(d)
			if err != nil {
				return 0, err
			}
			summary = describeServer(name, sd)
		}

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, summary)
		return len(d.Items()), nil
	})
}

func describeServer(name string, sd *tordir.ServerDescriptor) string {
	return fmt.Sprintf("%s: %s %s:%d published=%s fingerprint=%X",
		name, sd.Nickname, sd.Address, sd.ORPort, sd.Published.Format("2006-01-02 15:04:05"), sd.Fingerprint)
}
