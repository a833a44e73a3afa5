package classify_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uartlog/uartlog-go/pkg/uartlog/classify"
)

func TestLoad_Valid(t *testing.T) {
	rf, err := classify.Load("testdata/valid.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, rf.Version)
	require.Len(t, rf.Rules, 2)
	assert.Equal(t, "crc", rf.Rules[0].ID)
	assert.Equal(t, classify.Error, rf.Rules[0].Category)
	assert.Equal(t, []string{"RETRY", "timeout"}, rf.Rules[1].Keywords)
}

func TestLoad_InvalidRegex(t *testing.T) {
	// Load does not compile regexes; New does.
	rf, err := classify.Load("testdata/invalid_regex.yaml")
	require.NoError(t, err)
	assert.NotNil(t, rf)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		file       string
		validation bool
		contains   string
	}{
		{file: "missing_fields.yaml", contains: "category is required"},
		{file: "unsupported_version.yaml", validation: true, contains: "unsupported version"},
		{file: "duplicate_id.yaml", contains: "duplicate id"},
		{file: "both_matchers.yaml", contains: "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := classify.Load(filepath.Join("testdata", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)

			if tt.validation {
				var valErr *classify.ValidationError
				assert.ErrorAs(t, err, &valErr)
			} else {
				var ruleErr *classify.RuleError
				assert.ErrorAs(t, err, &ruleErr)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := classify.Load("testdata/nonexistent.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read rule file")
	assert.NotContains(t, err.Error(), "testdata")
}

func TestLoad_Directory(t *testing.T) {
	_, err := classify.Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regular file")
}

func TestLoad_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("#", classify.MaxRuleFileSize+1)), 0o644))

	_, err := classify.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestLoadBytes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "valid", data: "version: 1\nrules:\n  - id: a\n    category: error\n    keywords: [FAIL]\n"},
		{name: "empty", data: "", wantErr: "empty"},
		{name: "bad yaml", data: "version: [", wantErr: "failed to parse YAML"},
		{name: "no rules", data: "version: 1\nrules: []\n", wantErr: "at least one rule"},
		{name: "missing id", data: "version: 1\nrules:\n  - category: error\n    keywords: [X]\n", wantErr: "id is required"},
		{name: "no matcher", data: "version: 1\nrules:\n  - id: a\n    category: error\n", wantErr: "one of keywords or regex"},
		{name: "empty keyword", data: "version: 1\nrules:\n  - id: a\n    category: error\n    keywords: ['']\n", wantErr: "must not be empty"},
		{name: "long regex", data: "version: 1\nrules:\n  - id: a\n    category: error\n    regex: '" + strings.Repeat("a", classify.MaxRegexLength+1) + "'\n", wantErr: "regex too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf, err := classify.LoadBytes([]byte(tt.data))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, rf)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
