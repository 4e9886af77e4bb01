package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/specialistvlad/meshviz/internal/producer"
	"github.com/spf13/cobra"
)

func newSendCmd(outW io.Writer) *cobra.Command {
	var (
		url     string
		file    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Post a stream of JSON events to a running server",
		Long: `send reads JSON events from --file, or from stdin when the file is "-", and
posts them to the server one at a time, in order. Each reply is printed on
its own line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return usageError(fmt.Sprintf("failed to open event file: %v", err))
				}
				defer f.Close()
				in = f
			}

			client := producer.NewClient(url, timeout)
			defer client.Close()

			sent, rejected, err := client.SendStream(cmd.Context(), in, func(r producer.Result) {
				fmt.Fprintln(outW, string(r.Body))
			})
			if err != nil {
				return err
			}
			if rejected > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d events rejected", rejected, sent+rejected)}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", "http://localhost:8000", "Server base URL.")
	f.StringVarP(&file, "file", "f", "-", "File with JSON events, or - for stdin.")
	f.DurationVar(&timeout, "timeout", 10*time.Second, "Timeout for each request.")
	return cmd
}
