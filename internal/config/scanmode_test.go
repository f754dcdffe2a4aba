package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseScanMode_AcceptsKnownModes(t *testing.T) {
	cases := map[string]ScanMode{
		"baseline":   ScanModeBaseline,
		"fullscan":   ScanModeFull,
		"full":       ScanModeFull,
		"apiscan":    ScanModeAPI,
		"api":        ScanModeAPI,
		"activescan": ScanModeActive,
		"active":     ScanModeActive,
		"Baseline":   ScanModeBaseline,
		" baseline ": ScanModeBaseline,
	}

	for input, expected := range cases {
		t.Run(input, func(t *testing.T) {
			mode, err := ParseScanMode(input)
			assert.NoError(t, err)
			assert.Equal(t, expected, mode)
		})
	}
}

func Test_ParseScanMode_RejectsUnknownModes(t *testing.T) {
	for _, input := range []string{"", "spider", "passive", "base line"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseScanMode(input)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "is invalid")

			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func Test_ScanMode_String_RoundTrips(t *testing.T) {
	for _, mode := range []ScanMode{ScanModeBaseline, ScanModeFull, ScanModeAPI, ScanModeActive} {
		parsed, err := ParseScanMode(mode.String())
		assert.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
}
