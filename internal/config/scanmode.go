package config

import (
	"fmt"
	"strings"
)

// ScanMode selects the scanner invocation strategy.
type ScanMode int

const (
	ScanModeBaseline ScanMode = iota
	ScanModeFull
	ScanModeAPI
	ScanModeActive
)

// ParseScanMode accepts the CLI spellings (baseline, fullscan, apiscan,
// activescan) as well as the short aliases used in config files.
func ParseScanMode(value string) (ScanMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "baseline":
		return ScanModeBaseline, nil
	case "fullscan", "full":
		return ScanModeFull, nil
	case "apiscan", "api":
		return ScanModeAPI, nil
	case "activescan", "active":
		return ScanModeActive, nil
	default:
		return ScanModeBaseline, &ConfigurationError{
			Field:  "scanMode",
			Reason: fmt.Sprintf("the scan mode %q is invalid", value),
		}
	}
}

func (m ScanMode) String() string {
	switch m {
	case ScanModeFull:
		return "fullscan"
	case ScanModeAPI:
		return "apiscan"
	case ScanModeActive:
		return "activescan"
	default:
		return "baseline"
	}
}
