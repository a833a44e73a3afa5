package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uartlog/uartlog-go/internal/portfinder"
)

func newPortsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Long: `List the serial ports present on this machine, most likely UART
adapters first. The first entry is the port capture uses by default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := portfinder.DetectPorts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range ports {
				if _, err := fmt.Fprintln(out, p); err != nil {
					return err
				}
			}
			a.logger.Debug("detected ports", "count", len(ports))
			return nil
		},
	}
}
