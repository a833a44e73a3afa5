package parser

import "regexp"

// linePattern recognizes "HH:MM:SS ... RX|TX ...: message".
//
// The greedy ".*" before the direction picks the last RX/TX token that is
// still followed by a ": " separator; the lazy ".*?" after it stops at the
// first separator. Captures: (1) timestamp, (2) direction, (3) message.
var linePattern = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}).*(RX|TX).*?: (.+)`)
