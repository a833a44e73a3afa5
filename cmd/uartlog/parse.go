package main

import (
	"github.com/spf13/cobra"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
)

func newParseCmd(a *app) *cobra.Command {
	var f outputFlags
	var maxBytes int64

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a saved UART log file",
		Long: `Parse a saved UART log file and print its records.

Lines that do not look like "HH:MM:SS ... RX|TX ...: message" are ignored.
Use "-" to read from standard input.

Examples:
  # Print as a table
  uartlog parse session.log

  # Only errors, as CSV
  uartlog parse session.log --category error --format csv

  # Slowest responses first, exported for a spreadsheet
  uartlog parse session.log --sort Delay --desc -o export/parsed_log.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := append(a.readerOptions(&f), uartlog.WithMaxFileBytes(maxBytes))

			var events []uartlog.Event
			var err error
			if args[0] == "-" {
				events, err = uartlog.ParseReader(cmd.Context(), cmd.InOrStdin(), opts...)
			} else {
				events, err = uartlog.ParseFile(cmd.Context(), args[0], opts...)
			}
			if err != nil {
				return err
			}
			return a.present(cmd, &f, events)
		},
	}

	addOutputFlags(cmd, &f)
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", uartlog.DefaultMaxFileBytes,
		"Largest file to read (0 = unlimited)")
	return cmd
}
