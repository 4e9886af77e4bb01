package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Output goes to outW and errW.
func NewRootCmd(outW, errW io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "meshviz",
		Short: "Mesh network topology visualizer",
		Long: `meshviz keeps one shared graph of a simulated mesh network, fed by topology
and traffic events, and streams every change to attached observers over
websocket and socket.io.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err.Error())
	})

	root.AddCommand(newServeCmd(runServer(outW)), newWatchCmd(outW), newSendCmd(outW))
	return root
}

// Execute runs the CLI with args. Usage problems are returned as
// *ExitError with code 2.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCmd(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "unknown command") || strings.HasPrefix(err.Error(), "unknown flag") {
		return usageError(err.Error())
	}
	return err
}
