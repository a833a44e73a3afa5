package classify

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/uartlog/uartlog-go/internal/safefile"
)

const (
	// MaxRuleFileSize is the maximum allowed size for a rule file (1MB).
	MaxRuleFileSize = 1 * 1024 * 1024

	// MaxRegexLength is the maximum allowed length of a rule regex.
	MaxRegexLength = 512

	// MaxRuleCount is the maximum number of rules in a rule file.
	MaxRuleCount = 1000

	// SupportedVersion is the currently supported rule file format version.
	SupportedVersion = 1
)

// sanitizePathError removes the path from os.PathError so error messages
// don't expose file system paths.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads and validates a rule file.
// Only regular files up to MaxRuleFileSize are accepted.
func Load(path string) (*RuleFile, error) {
	data, err := safefile.ReadFile(path, MaxRuleFileSize)
	switch {
	case errors.Is(err, safefile.ErrNotRegularFile):
		return nil, errors.New("rule file must be a regular file (not FIFO, device, or special file)")
	case errors.Is(err, safefile.ErrTooLarge):
		return nil, fmt.Errorf("rule file too large (max %d bytes)", MaxRuleFileSize)
	case err != nil:
		return nil, fmt.Errorf("failed to read rule file: %w", sanitizePathError(err))
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a rule file from a byte slice.
func LoadBytes(data []byte) (*RuleFile, error) {
	if len(data) == 0 {
		return nil, errors.New("rule file is empty")
	}
	if len(data) > MaxRuleFileSize {
		return nil, fmt.Errorf("rule file too large: %d bytes (max %d)", len(data), MaxRuleFileSize)
	}

	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return &rf, nil
}

// Validate performs schema-level validation on the rule file.
// It does not compile regular expressions; New does that.
func (rf *RuleFile) Validate() error {
	if rf.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", rf.Version, SupportedVersion),
		}
	}
	if len(rf.Rules) == 0 {
		return &ValidationError{Field: "rules", Message: "at least one rule is required"}
	}
	if len(rf.Rules) > MaxRuleCount {
		return &ValidationError{
			Field:   "rules",
			Message: fmt.Sprintf("too many rules (%d), maximum allowed is %d", len(rf.Rules), MaxRuleCount),
		}
	}

	seenIDs := make(map[string]int, len(rf.Rules))
	for i, r := range rf.Rules {
		if r.ID == "" {
			return &RuleError{Index: i, Field: "id", Message: "id is required"}
		}
		if prev, exists := seenIDs[r.ID]; exists {
			return &RuleError{
				Index:   i,
				ID:      r.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id (previously defined at rule[%d])", prev),
			}
		}
		seenIDs[r.ID] = i

		if r.Category == None {
			return &RuleError{Index: i, ID: r.ID, Field: "category", Message: "category is required"}
		}

		switch {
		case len(r.Keywords) == 0 && r.Regex == "":
			return &RuleError{Index: i, ID: r.ID, Field: "keywords", Message: "one of keywords or regex is required"}
		case len(r.Keywords) > 0 && r.Regex != "":
			return &RuleError{Index: i, ID: r.ID, Field: "regex", Message: "keywords and regex are mutually exclusive"}
		}

		for _, kw := range r.Keywords {
			if kw == "" {
				return &RuleError{Index: i, ID: r.ID, Field: "keywords", Message: "keywords must not be empty"}
			}
		}
		if len(r.Regex) > MaxRegexLength {
			return &RuleError{
				Index:   i,
				ID:      r.ID,
				Field:   "regex",
				Message: fmt.Sprintf("regex too long: %d bytes (max %d)", len(r.Regex), MaxRegexLength),
			}
		}
	}
	return nil
}
