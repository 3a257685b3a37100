package cmd

import (
	"fmt"
	"io"

	"github.com/mmcloughlin/take"
	"github.com/mmcloughlin/take/httphead"
	"github.com/spf13/cobra"
)

// httpCmd represents the http command
var httpCmd = &cobra.Command{
	Use:   "http FILE...",
	Short: "Parse HTTP message heads",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parseHTTP(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(httpCmd)
}

func parseHTTP(cmd *cobra.Command, filenames []string) error {
	r, err := newRunner("http")
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()
	for _, filename := range filenames {
		err := r.File(filename, func(name string, b []byte) (int, error) {
			return describeHTTP(out, name, b)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// describeHTTP writes a summary of the message in b. Messages starting with
// an HTTP version are responses, anything else is a request.
func describeHTTP(w io.Writer, name string, b []byte) (int, error) {
	if _, _, ok := take.Maybe(b, "HTTP/"); ok {
		resp, body, err := httphead.ParseResponse(b)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(w, "%s: %s %d %q fields=%d body=%d\n", name, resp.Version, resp.StatusCode, resp.Reason, len(resp.Header), len(body))
		return len(resp.Header), nil
	}

	req, body, err := httphead.ParseRequest(b)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(w, "%s: %s %s %s fields=%d body=%d\n", name, req.Method, req.Target, req.Version, len(req.Header), len(body))
	return len(req.Header), nil
}
