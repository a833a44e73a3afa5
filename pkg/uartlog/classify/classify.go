package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is a display tag for a message. The zero value means the
// message is not highlighted.
type Category string

// Built-in categories.
const (
	None    Category = ""
	Warning Category = "warning"
	Error   Category = "error"
)

// DefaultRules reproduce the classic log viewer highlighting.
var DefaultRules = []Rule{
	{ID: "error", Category: Error, Keywords: []string{"ERROR", "ERR"}},
	{ID: "warning", Category: Warning, Keywords: []string{"WARN", "WARNING"}},
}

// Classifier maps messages to categories.
// A Classifier is safe for concurrent use by multiple goroutines.
type Classifier struct {
	rules []compiledRule
}

type compiledRule struct {
	id       string
	category Category
	keywords []string // upper-cased
	regex    *regexp.Regexp
}

var defaultClassifier = mustNew(DefaultRules)

// Default returns the classifier for DefaultRules.
func Default() *Classifier {
	return defaultClassifier
}

// New compiles the rules of a validated rule file.
func New(rf *RuleFile) (*Classifier, error) {
	if rf == nil {
		return nil, fmt.Errorf("rule file is nil")
	}
	return compile(rf.Rules)
}

// NewFromFile loads a rule file and compiles it.
func NewFromFile(path string) (*Classifier, error) {
	rf, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(rf)
}

func mustNew(rules []Rule) *Classifier {
	c, err := compile(rules)
	if err != nil {
		panic(err)
	}
	return c
}

func compile(rules []Rule) (*Classifier, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		cr := compiledRule{id: r.ID, category: r.Category}
		if r.Regex != "" {
			re, err := regexp.Compile(r.Regex)
			if err != nil {
				return nil, &RuleError{
					Index:   i,
					ID:      r.ID,
					Field:   "regex",
					Message: fmt.Sprintf("invalid regular expression: %v", err),
					Cause:   err,
				}
			}
			cr.regex = re
		}
		for _, kw := range r.Keywords {
			cr.keywords = append(cr.keywords, strings.ToUpper(kw))
		}
		compiled = append(compiled, cr)
	}
	return &Classifier{rules: compiled}, nil
}

// Classify returns the category of the first rule matching message, or
// None.
func (c *Classifier) Classify(message string) Category {
	cat, _ := c.Match(message)
	return cat
}

// Match is like Classify but also returns the ID of the matching rule.
func (c *Classifier) Match(message string) (Category, string) {
	var upper string
	for _, r := range c.rules {
		if r.regex != nil {
			if r.regex.MatchString(message) {
				return r.category, r.id
			}
			continue
		}
		if upper == "" {
			upper = strings.ToUpper(message)
		}
		for _, kw := range r.keywords {
			if strings.Contains(upper, kw) {
				return r.category, r.id
			}
		}
	}
	return None, ""
}
