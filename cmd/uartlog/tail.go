package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
)

func newTailCmd(a *app) *cobra.Command {
	var f outputFlags
	var (
		duration  int
		fromStart bool
		poll      bool
	)

	cmd := &cobra.Command{
		Use:   "tail <file>",
		Short: "Follow a UART log file that is being written",
		Long: `Follow a log file another program is appending to, such as a terminal
emulator's capture log, for a fixed duration.

Only lines written after tail starts are read unless --from-start is given.
Ctrl-C stops early; the records read so far are still printed.

Examples:
  uartlog tail putty.log -d 60
  uartlog tail minicom.cap --from-start --format pretty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d := a.cfg.Capture.Duration
			if duration != 0 {
				d = time.Duration(duration) * time.Second
			}

			opts := append(a.readerOptions(&f),
				uartlog.WithFromStart(fromStart),
				uartlog.WithTailPoll(poll),
			)
			events, err := uartlog.Tail(ctx, args[0], d, opts...)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			if events == nil {
				return err
			}
			if perr := a.present(cmd, &f, events); perr != nil {
				return perr
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&duration, "duration", "d", 0,
		"Follow duration in seconds (default from config, else 10)")
	cmd.Flags().BoolVar(&fromStart, "from-start", false,
		"Read existing file content first")
	cmd.Flags().BoolVar(&poll, "poll", false,
		"Poll for changes instead of using file system notifications")
	addOutputFlags(cmd, &f)
	return cmd
}
