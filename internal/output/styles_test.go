package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.Color
		wantDim  bool
	}{
		{
			name:   "written returns green",
			status: StatusWritten,
			wantFG: colorGreen,
		},
		{
			name:   "valid returns green",
			status: StatusValid,
			wantFG: colorGreen,
		},
		{
			name:    "unchanged returns faint",
			status:  StatusUnchanged,
			wantDim: true,
		},
		{
			name:     "failed returns bold red",
			status:   statusFailed,
			wantBold: true,
			wantFG:   colorBoldRed,
		},
		{
			name:   "unknown returns default unstyled",
			status: "unknown-value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := statusStyle(tt.status)
			if tt.wantBold {
				assert.True(t, style.GetBold(), "expected bold")
			}
			if tt.wantFG != "" {
				assert.Equal(t, tt.wantFG, style.GetForeground(), "foreground color mismatch")
			}
			if tt.wantDim {
				assert.True(t, style.GetFaint(), "expected faint")
			}
		})
	}
}

func TestFormatArtifactLine(t *testing.T) {
	tests := []struct {
		name     string
		emitter  string
		relPath  string
		status   string
		wantPath string
	}{
		{
			name:     "written record file",
			emitter:  "record",
			relPath:  "order.rs",
			status:   StatusWritten,
			wantPath: "record/order.rs",
		},
		{
			name:     "unchanged schema file",
			emitter:  "schema",
			relPath:  "tables.sql",
			status:   StatusUnchanged,
			wantPath: "schema/tables.sql",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatArtifactLine(tt.emitter, tt.relPath, tt.status)

			assert.Contains(t, result, tt.wantPath, "should contain artifact path")
			assert.Contains(t, result, tt.status, "should contain status text")
			assert.True(t, strings.HasPrefix(stripAnsi(result), "e:"), "should start with e: prefix")
		})
	}

	t.Run("alignment consistency", func(t *testing.T) {
		line1 := FormatArtifactLine("orm", "order.rs", StatusWritten)
		line2 := FormatArtifactLine("dashboard", "types.ts", StatusWritten)

		stripped1 := stripAnsi(line1)
		stripped2 := stripAnsi(line2)

		idx1 := strings.Index(stripped1, StatusWritten)
		idx2 := strings.Index(stripped2, StatusWritten)

		assert.Equal(t, idx1, idx2, "status words should align to same column")
	})
}

func TestFormatCheckmark(t *testing.T) {
	result := FormatCheckmark("Compilation finished")
	assert.Contains(t, result, "✔", "should contain checkmark")
	assert.Contains(t, result, "Compilation finished", "should contain message")
}

func TestFormatEntityCheck(t *testing.T) {
	result := FormatEntityCheck("Order", "8 fields")
	assert.Contains(t, result, "Order")
	assert.Contains(t, result, "8 fields")
	assert.True(t, strings.HasPrefix(stripAnsi(result), "✔"))
}

// stripAnsi removes ANSI escape sequences for content assertions.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
