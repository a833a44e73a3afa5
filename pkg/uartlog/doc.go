// Package uartlog parses UART communication logs into ordered records.
//
// A UART log line looks like
//
//	12:00:01 [RX] dev: PING
//
// and becomes an [Event] with the time of day, the direction (RX or TX),
// the message and the delay in seconds since the previous record of the
// same session. Lines that do not have this shape are ignored.
//
// # Reading Logs
//
// Parse a saved log file:
//
//	events, err := uartlog.ParseFile(ctx, "session.log")
//	if errors.Is(err, uartlog.ErrSourceUnavailable) {
//	    log.Fatal(err)
//	}
//
// Capture from a serial port for ten seconds:
//
//	events, err := uartlog.Capture(ctx, "/dev/ttyUSB0", 115200, 10*time.Second)
//	if errors.Is(err, uartlog.ErrPortUnavailable) {
//	    log.Fatal(err)
//	}
//
// The port is always released before Capture returns. Cancelling ctx stops
// the capture early and returns what was received so far.
//
// Follow a file another program is writing with [Tail].
//
// # Tables and CSV
//
// Records are presented as the columns in [Columns]. [SortBy], [Filter] and
// [WriteCSV] cover the usual table operations:
//
//	_ = uartlog.SortBy(events, "Delay", true)
//	errs := uartlog.Filter(events, uartlog.FilterOptions{Contains: "error"})
//	_ = uartlog.WriteCSV(os.Stdout, errs)
//
// Message highlighting rules live in the classify subpackage.
package uartlog
