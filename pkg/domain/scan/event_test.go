package scan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryEventPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    string
	}{
		{
			name:    "no candidate files",
			summary: Summary{FilesScanned: 0},
			want:    "No supported files found to scan in the repository.",
		},
		{
			name:    "no candidates wins even with found flag",
			summary: Summary{FilesScanned: 0, VulnerabilitiesFound: true},
			want:    "No supported files found to scan in the repository.",
		},
		{
			name:    "scanned but clean",
			summary: Summary{FilesScanned: 3},
			want:    "Scan complete. No vulnerabilities found in supported files.",
		},
		{
			name:    "vulnerabilities found",
			summary: Summary{FilesScanned: 3, VulnerabilitiesFound: true},
			want:    "Scan complete. Vulnerabilities were found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := SummaryEvent(tt.summary)
			assert.Equal(t, EventTypeStatus, ev.Type)
			assert.Equal(t, tt.want, ev.Payload)
		})
	}
}

func TestVulnerableEventWireShape(t *testing.T) {
	ev := Vulnerable("src/app.py", "SQL injection on line 12")

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			File     string `json:"file"`
			Analysis string `json:"analysis"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "vulnerability", decoded.Type)
	assert.Equal(t, "src/app.py", decoded.Payload.File)
	assert.Equal(t, "SQL injection on line 12", decoded.Payload.Analysis)
}

func TestDoneEvent(t *testing.T) {
	ev := Done()
	assert.Equal(t, EventTypeDone, ev.Type)
	assert.Equal(t, "Process finished.", ev.Payload)
}
