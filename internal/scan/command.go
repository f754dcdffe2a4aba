package scan

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/soos-io/soos-dast/internal/config"
	"github.com/soos-io/soos-dast/internal/constants"
)

// Command is the ordered argument list of one scanner invocation. It is
// built once per run and never mutated afterwards.
type Command struct {
	args []string
}

func (c *Command) Args() []string {
	out := make([]string, len(c.args))
	copy(out, c.args)
	return out
}

func (c *Command) String() string {
	return strings.Join(c.args, " ")
}

// MissingFormatError is raised when apiscan mode is requested without an
// API format.
type MissingFormatError struct{}

func (e *MissingFormatError) Error() string {
	return "format is required for apiscan mode"
}

// ErrActiveScanUnsupported is returned for the activescan mode, which has
// no scanner script in this integration.
var ErrActiveScanUnsupported = errors.New("the activescan mode is not supported by this integration")

// BuildCommand assembles the scanner invocation for the configured scan
// mode. It is a pure function of the configuration and never executes
// anything.
func BuildCommand(cfg *config.AnalysisConfig) (*Command, error) {
	var script string
	switch cfg.ScanMode {
	case config.ScanModeBaseline:
		script = constants.BASELINE_SCRIPT
	case config.ScanModeFull:
		script = constants.FULL_SCAN_SCRIPT
	case config.ScanModeAPI:
		if cfg.APIScanFormat == "" {
			return nil, &MissingFormatError{}
		}
		script = constants.API_SCAN_SCRIPT
	default:
		return nil, ErrActiveScanUnsupported
	}

	if cfg.TargetURL == "" {
		return nil, errors.New("target url is required")
	}

	args := []string{constants.PY_CMD, script}
	args = append(args, constants.ZAP_TARGET_URL_OPTION, cfg.TargetURL)

	if cfg.Debug {
		args = append(args, constants.ZAP_DEBUG_OPTION)
	}
	if cfg.Rules != "" {
		args = append(args, constants.ZAP_RULES_FILE_OPTION, cfg.Rules)
	}
	if cfg.ContextFile != "" {
		args = append(args, constants.ZAP_CONTEXT_FILE_OPTION, cfg.ContextFile)
	}
	if cfg.AjaxSpider {
		args = append(args, constants.ZAP_AJAX_SPIDER_OPTION)
	}
	if cfg.FullScanMinutes != "" {
		args = append(args, constants.ZAP_MINUTES_DELAY_OPTION, cfg.FullScanMinutes)
	}
	if cfg.ScanMode == config.ScanModeAPI {
		args = append(args, constants.ZAP_FORMAT_OPTION, cfg.APIScanFormat)
	}
	if cfg.Level != "" {
		args = append(args, constants.ZAP_MINIMUM_LEVEL_OPTION, cfg.Level)
	}

	if opts, present := zapOptionsBlock(cfg); present {
		args = append(args, constants.ZAP_OTHER_OPTIONS, opts)
	}

	args = append(args, constants.ZAP_HOOK_OPTION, constants.ZAP_HOOK_SCRIPT)
	args = append(args, constants.ZAP_JSON_REPORT_OPTION, constants.REPORT_SCAN_RESULT_FILENAME)

	return &Command{args: args}, nil
}

// zapOptionsBlock assembles the auxiliary option pairs passed to the
// scanner behind a single flag. The block is only emitted when a login
// URL, free-form options, or request cookies are configured.
func zapOptionsBlock(cfg *config.AnalysisConfig) (string, bool) {
	if cfg.Auth.LoginURL == "" && cfg.ZapOptions == "" && cfg.RequestCookies == "" {
		return "", false
	}

	var pairs []string
	if cfg.Auth.LoginURL != "" {
		pairs = append(pairs, customOption("auth.loginurl", cfg.Auth.LoginURL))
	}
	if cfg.RequestCookies != "" {
		pairs = append(pairs, customOption("request.custom_cookies", cfg.RequestCookies))
	}
	if cfg.RequestHeader != "" {
		pairs = append(pairs, customOption("request.custom_header", cfg.RequestHeader))
	}
	return strings.Join(pairs, " "), true
}

func customOption(label string, value string) string {
	return fmt.Sprintf("%v=%q", label, value)
}
