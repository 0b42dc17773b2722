// Test Type: Unit Test
// Description: Tests for output format parsing and detection

package ui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/lumina-project/pkg/errors"
	"github.com/arthur-debert/lumina-project/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatString(t *testing.T) {
	assert.Equal(t, "auto", ui.FormatAuto.String())
	assert.Equal(t, "term", ui.FormatTerminal.String())
	assert.Equal(t, "text", ui.FormatText.String())
	assert.Equal(t, "json", ui.FormatJSON.String())
	assert.Equal(t, "unknown", ui.Format(999).String())

	for _, name := range ui.FormatNames() {
		f, err := ui.ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{input: "", expected: ui.FormatAuto},
		{input: "auto", expected: ui.FormatAuto},
		{input: "term", expected: ui.FormatTerminal},
		{input: "terminal", expected: ui.FormatTerminal},
		{input: "TERM", expected: ui.FormatTerminal},
		{input: "text", expected: ui.FormatText},
		{input: "plain", expected: ui.FormatText},
		{input: " Json ", expected: ui.FormatJSON},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("parse "+tt.input, func(t *testing.T) {
			format, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				assert.Contains(t, err.Error(), "unknown format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	t.Run("regular file is not a terminal", func(t *testing.T) {
		assert.Equal(t, ui.FormatText, ui.DetectFormat(f))
	})

	t.Run("NO_COLOR wins", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		assert.Equal(t, ui.FormatText, ui.DetectFormat(f))
	})
}

func TestResolve(t *testing.T) {
	assert.Equal(t, ui.FormatJSON, ui.Resolve(ui.FormatJSON, &bytes.Buffer{}))
	assert.Equal(t, ui.FormatText, ui.Resolve(ui.FormatAuto, &bytes.Buffer{}))
}
