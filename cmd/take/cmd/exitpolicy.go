package cmd

import (
	"fmt"
	"net"
	"strconv"

	"github.com/mmcloughlin/take/torexitpolicy"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// exitpolicyCmd represents the exitpolicy command
var exitpolicyCmd = &cobra.Command{
	Use:   "exitpolicy FILE",
	Short: "Parse an exit policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exitpolicy(cmd, args[0])
	},
}

var (
	checkAddrs []string
)

func init() {
	exitpolicyCmd.Flags().StringSliceVarP(&checkAddrs, "check", "c", nil, "report whether the policy allows exit to ip:port")

	rootCmd.AddCommand(exitpolicyCmd)
}

func exitpolicy(cmd *cobra.Command, filename string) error {
	r, err := newRunner("exitpolicy")
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()
	return r.File(filename, func(_ string, b []byte) (int, error) {
		p, err := torexitpolicy.ParsePolicy(b)
		if err != nil {
			return 0, err
		}

		if len(checkAddrs) == 0 {
			fmt.Fprint(out, string(p.Encode()))
		}
		for _, addr := range checkAddrs {
			ip, port, err := parseIPPort(addr)
			if err != nil {
				return 0, err
			}
			action := torexitpolicy.Action(p.Allow(ip, port))
			fmt.Fprintf(out, "%s %s\n", action.Describe(), addr)
		}
		return len(p.Rules()), nil
	})
}

func parseIPPort(addr string) (net.IP, uint16, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, 0, err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, 0, errors.Errorf("invalid ip %q", host)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return nil, 0, errors.Wrap(err, "invalid port")
	}
	return ip, uint16(p), nil
}
