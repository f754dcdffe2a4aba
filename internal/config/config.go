package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/soos-io/soos-dast/internal/constants"
)

// AnalysisConfig is the fully resolved configuration of one analysis run.
// It is built once by Resolve and treated as read-only afterwards.
type AnalysisConfig struct {
	ClientID string
	APIKey   string
	BaseURI  string

	ProjectName string
	ScanMode    ScanMode
	TargetURL   string
	FailOnError bool

	Debug      bool
	AjaxSpider bool
	Rules      string
	Level      string

	ContextFile     string
	ContextUser     string
	FullScanMinutes string
	APIScanFormat   string

	IntegrationName string
	IntegrationType string
	DASTTool        string

	Auth AuthConfig

	ZapOptions     string
	RequestCookies string
	RequestHeader  string

	CommitHash           string
	BranchName           string
	BranchURI            string
	BuildVersion         string
	BuildURI             string
	OperatingEnvironment string

	GenerateSarif bool
	GithubPAT     string

	// WorkDir is where the scanner drops its JSON report. Overridable so
	// runs outside the ZAP container (and tests) can point elsewhere.
	WorkDir string
}

// AuthConfig groups the scanner login automation settings. Only the login
// URL feeds the scanner command line, the rest is consumed by the hook
// script through the work directory.
type AuthConfig struct {
	Auto             bool
	Display          bool
	Username         string
	Password         string
	LoginURL         string
	UsernameField    string
	PasswordField    string
	SubmitField      string
	FirstSubmitField string
}

// ReportFilePath returns the location of the scanner's JSON report.
func (c *AnalysisConfig) ReportFilePath() string {
	return c.WorkDir + "/" + constants.REPORT_SCAN_RESULT_FILENAME
}

// Resolve turns raw Options into a validated AnalysisConfig. When a config
// file is given, its `config` mapping entirely replaces the flag-derived
// values; the two sources are never merged key by key. Credentials missing
// from the chosen source fall back to the SOOS_CLIENT_ID / SOOS_API_KEY
// environment variables.
func Resolve(opts Options) (*AnalysisConfig, error) {
	if opts.ConfigFile != "" {
		fileOpts, err := loadConfigFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		fileOpts.TargetURL = opts.TargetURL
		opts = *fileOpts
	}

	if opts.TargetURL == "" {
		return nil, missingFieldError("targetURL")
	}
	if opts.ProjectName == "" {
		return nil, missingFieldError("projectName")
	}

	clientID := opts.ClientID
	if clientID == "" {
		clientID = os.Getenv(constants.SOOS_CLIENT_ID_ENV_KEY)
	}
	if clientID == "" {
		return nil, missingFieldError("clientId")
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(constants.SOOS_API_KEY_ENV_KEY)
	}
	if apiKey == "" {
		return nil, missingFieldError("apiKey")
	}

	if opts.ScanMode == "" {
		return nil, missingFieldError("scanMode")
	}
	scanMode, err := ParseScanMode(opts.ScanMode)
	if err != nil {
		return nil, err
	}

	baseURI := opts.APIURL
	if baseURI == "" {
		baseURI = constants.SOOS_DEFAULT_API_URL
	}
	if !strings.HasSuffix(baseURI, "/") {
		baseURI += "/"
	}

	integrationName := opts.IntegrationName
	if integrationName == "" {
		integrationName = constants.DEFAULT_INTEGRATION_NAME
	}
	integrationType := opts.IntegrationType
	if integrationType == "" {
		integrationType = constants.DEFAULT_INTEGRATION_TYPE
	}

	contextFile := opts.ContextFile
	if opts.Context.File != "" {
		contextFile = opts.Context.File
	}
	contextUser := opts.ContextUser
	if opts.Context.User != "" {
		contextUser = opts.Context.User
	}
	minutes := opts.FullScanMinutes
	if opts.FullScan.Minutes != "" {
		minutes = opts.FullScan.Minutes
	}
	apiScanFormat := opts.APIScanFormat
	if opts.APIScan.Format != "" {
		apiScanFormat = opts.APIScan.Format
	}

	cfg := &AnalysisConfig{
		ClientID:    clientID,
		APIKey:      apiKey,
		BaseURI:     baseURI,
		ProjectName: unescapeString(opts.ProjectName),
		ScanMode:    scanMode,
		TargetURL:   opts.TargetURL,
		FailOnError: opts.FailOnError,

		Debug:      opts.Debug,
		AjaxSpider: opts.AjaxSpider,
		Rules:      opts.Rules,
		Level:      opts.Level,

		ContextFile:     contextFile,
		ContextUser:     contextUser,
		FullScanMinutes: minutes,
		APIScanFormat:   apiScanFormat,

		IntegrationName: integrationName,
		IntegrationType: integrationType,
		DASTTool:        constants.DEFAULT_DAST_TOOL,

		Auth: AuthConfig{
			Auto:             opts.AuthAuto,
			Display:          opts.AuthDisplay,
			Username:         opts.AuthUsername,
			Password:         opts.AuthPassword,
			LoginURL:         opts.AuthLoginURL,
			UsernameField:    opts.AuthUsernameField,
			PasswordField:    opts.AuthPasswordField,
			SubmitField:      opts.AuthSubmitField,
			FirstSubmitField: opts.AuthFirstSubmitField,
		},

		ZapOptions:     opts.ZapOptions,
		RequestCookies: opts.RequestCookies,
		RequestHeader:  opts.RequestHeader,

		CommitHash:           opts.CommitHash,
		BranchName:           opts.BranchName,
		BranchURI:            opts.BranchURI,
		BuildVersion:         opts.BuildVersion,
		BuildURI:             opts.BuildURI,
		OperatingEnvironment: opts.OperatingEnvironment,

		GenerateSarif: opts.Sarif,
		GithubPAT:     opts.GithubPAT,

		WorkDir: constants.REPORT_WORK_DIR,
	}

	return cfg, nil
}

// loadConfigFile reads the YAML file and unmarshals its top-level `config`
// mapping. Unknown keys are ignored for forward compatibility.
func loadConfigFile(path string) (*Options, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %v", path)
	}

	sub := v.Sub("config")
	if sub == nil {
		return nil, &ConfigurationError{
			Field:  "config",
			Reason: "the config file has no top-level config mapping",
		}
	}

	opts := &Options{}
	if err := sub.Unmarshal(opts); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %v", path)
	}
	return opts, nil
}

// unescapeString resolves literal escape sequences that CI systems tend to
// leave in quoted values, e.g. `My \"Project\"`.
var unescapeReplacer = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\'`, `'`)

func unescapeString(value string) string {
	return unescapeReplacer.Replace(value)
}
