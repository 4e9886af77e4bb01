package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/meshviz/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(outW io.Writer) *cobra.Command {
	opts := watch.Options{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Attach to a running server and print every event as a JSON line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := watch.Watch(cmd.Context(), opts, func(ev watch.Event) {
				fmt.Fprintln(outW, string(ev.Payload))
			})
			if errors.Is(err, watch.ErrDisconnected) {
				return &ExitError{Code: 1, Message: "server closed the connection"}
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.URL, "url", "http://localhost:8000", "Server base URL; the path defaults to /socket.io/.")
	f.StringVar(&opts.Namespace, "namespace", "/", "Socket.io namespace.")
	f.BoolVar(&opts.InsecureSkipVerify, "insecure-skip-verify", false, "Skip TLS certificate verification.")
	return cmd
}
