// Command uartlog parses UART communication logs from files and serial ports.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/uartlog/uartlog-go/internal/config"
	"github.com/uartlog/uartlog-go/pkg/uartlog"
)

// app holds state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger

	// opener overrides the serial backend (tests).
	opener uartlog.PortOpener
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		// SilenceErrors prevents cobra from printing it.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "uartlog",
		Short: "Parse UART communication logs",
		Long: `uartlog turns UART logs into a table of Time, Direction, Message and Delay.

Logs can come from a saved file, a live serial port capture or a file that
another program is still writing. Results can be printed, sorted, filtered
and exported as CSV, or served over HTTP.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(
		newParseCmd(a),
		newCaptureCmd(a),
		newTailCmd(a),
		newPortsCmd(a),
		newServeCmd(a),
		newCompletionCmd(),
		newVersionCmd(),
	)
	return root
}

// init loads the configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readerOptions returns the options common to every reader.
func (a *app) readerOptions(f *outputFlags) []uartlog.Option {
	return []uartlog.Option{
		uartlog.WithLogger(a.logger),
		uartlog.WithIncludeRawLine(f.raw),
		uartlog.WithStopOnError(f.strict),
	}
}
