package serialport

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the text encoding assumed for serial data.
const DefaultEncoding = "utf-8"

// Decoder converts raw serial bytes into text. Bytes that cannot be
// decoded are dropped.
type Decoder struct {
	name string
	enc  encoding.Encoding // nil for UTF-8
}

// NewDecoder returns a Decoder for a WHATWG encoding label such as
// "utf-8", "latin1" or "windows-1252". An empty name selects UTF-8.
func NewDecoder(name string) (*Decoder, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	d := &Decoder{name: canonical}
	if canonical != DefaultEncoding {
		d.enc = enc
	}
	return d, nil
}

// Name returns the canonical encoding name.
func (d *Decoder) Name() string {
	return d.name
}

// Decode converts b to a string. The boolean is false if any bytes were
// invalid and had to be dropped.
func (d *Decoder) Decode(b []byte) (string, bool) {
	if d.enc == nil {
		if utf8.Valid(b) {
			return string(b), true
		}
		return strings.ToValidUTF8(string(b), ""), false
	}

	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), ""), false
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return strings.ReplaceAll(s, string(utf8.RuneError), ""), false
	}
	return s, true
}
