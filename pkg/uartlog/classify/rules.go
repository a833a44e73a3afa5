// Package classify tags UART messages with a display category such as
// "error" or "warning".
//
// Classification is a presentation concern: it never changes which lines
// are parsed or how. The default rules flag messages containing ERROR or
// ERR as errors and messages containing WARN or WARNING as warnings,
// ignoring case. Custom rules are loaded from YAML rule files.
package classify

// RuleFile represents the structure of a YAML rule file.
//
// Example YAML file:
//
//	version: 1
//	rules:
//	  - id: crc
//	    category: error
//	    regex: 'CRC (mismatch|fail)'
//	  - id: retries
//	    category: warning
//	    keywords: [RETRY, TIMEOUT]
type RuleFile struct {
	// Version is the rule file format version. Currently only version 1 is supported.
	Version int `yaml:"version"`

	// Rules are evaluated in order; the first matching rule wins.
	Rules []Rule `yaml:"rules"`
}

// Rule assigns Category to messages matching either Keywords or Regex.
type Rule struct {
	// ID is a unique identifier for this rule.
	ID string `yaml:"id"`

	// Category is the tag applied on a match (e.g. "error").
	Category Category `yaml:"category"`

	// Keywords match as case-insensitive substrings of the message.
	Keywords []string `yaml:"keywords,omitempty"`

	// Regex is matched against the message as written. Use (?i) for
	// case-insensitive matching.
	Regex string `yaml:"regex,omitempty"`
}
