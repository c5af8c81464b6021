package output_test

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/palimpsest/internal/output"
)

func TestFormatterJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatJSON, &buf)

	require.True(t, f.IsJSON())
	require.NoError(t, f.Print(map[string]any{"chunks": 8, "complete": true}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(8), decoded["chunks"])
	assert.Equal(t, true, decoded["complete"])
	assert.Contains(t, buf.String(), "  \"chunks\"", "JSON output is indented")
}

func TestFormatterText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatText, &buf)

	require.False(t, f.IsJSON())
	assert.Equal(t, output.FormatText, f.Format())

	require.NoError(t, f.Print("container is sound"))
	assert.Equal(t, "container is sound\n", buf.String())

	buf.Reset()
	table := output.NewTable("Property", "Value")
	table.AddRow("Chunks", "8")
	require.NoError(t, f.Print(tableString{table}))
	assert.Contains(t, buf.String(), "Chunks")
}

// tableString adapts a table to fmt.Stringer for Formatter.Print.
type tableString struct{ t *output.Table }

func (s tableString) String() string {
	var sb strings.Builder
	_ = s.t.Render(&sb)
	return sb.String()
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected output.Format
	}{
		{"json", output.FormatJSON},
		{"JSON", output.FormatJSON},
		{"text", output.FormatText},
		{" text ", output.FormatText},
		{"auto", output.FormatAuto},
		{"", output.FormatAuto},
		{"yaml", output.FormatAuto},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, output.ParseFormat(tt.input), "input %q", tt.input)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	// Explicit formats pass through regardless of the writer.
	var buf bytes.Buffer
	assert.Equal(t, output.FormatText, output.DetectFormat(&buf, output.FormatText))
	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatJSON))

	// Auto resolves to JSON for anything that is not a terminal.
	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatAuto))

	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer func() { _ = devNull.Close() }()
	assert.Equal(t, output.FormatJSON, output.DetectFormat(devNull, output.FormatAuto))
}

func TestTableRender(t *testing.T) {
	t.Parallel()
	table := output.NewTable("Property", "Value")
	table.AddRow("Path", "/tmp/vault.plm")
	table.AddRow("Chunks", "8")

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4, "header, rule, two rows")
	assert.Contains(t, lines[0], "Property")
	assert.True(t, strings.HasPrefix(lines[1], "--------"), "rule under header")

	// Columns align on the widest cell.
	assert.Equal(t, strings.Index(lines[2], "/tmp/vault.plm"), strings.Index(lines[3], "8"))
}

func TestTableRaggedAndEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, output.NewTable().Render(&buf))
	assert.Empty(t, buf.String())

	table := output.NewTable("A", "B", "C")
	table.AddRow("only")
	table.AddRow("x", "y", "z", "overflow")
	require.NoError(t, table.Render(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], "overflow")
}
