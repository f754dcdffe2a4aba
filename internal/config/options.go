package config

import (
	"github.com/spf13/pflag"
)

// Options carries the raw configuration values as given on the command line
// or inside the `config` mapping of a YAML file. Nothing is validated or
// defaulted at this level; Resolve turns Options into an AnalysisConfig.
type Options struct {
	TargetURL  string `mapstructure:"-"`
	ConfigFile string `mapstructure:"-"`

	ClientID    string `mapstructure:"clientId"`
	APIKey      string `mapstructure:"apiKey"`
	ProjectName string `mapstructure:"projectName"`
	ScanMode    string `mapstructure:"scanMode"`
	APIURL      string `mapstructure:"apiURL"`
	FailOnError bool   `mapstructure:"failOnError"`

	Debug      bool   `mapstructure:"debug"`
	AjaxSpider bool   `mapstructure:"ajaxSpider"`
	Rules      string `mapstructure:"rules"`
	Level      string `mapstructure:"level"`

	ContextFile     string          `mapstructure:"contextFile"`
	ContextUser     string          `mapstructure:"contextUser"`
	Context         ContextOptions  `mapstructure:"context"`
	FullScanMinutes string          `mapstructure:"fullScanMinutes"`
	FullScan        FullScanOptions `mapstructure:"fullScan"`
	APIScanFormat   string          `mapstructure:"apiScanFormat"`
	APIScan         APIScanOptions  `mapstructure:"apiScan"`

	IntegrationName string `mapstructure:"integrationName"`
	IntegrationType string `mapstructure:"integrationType"`

	AuthAuto             bool   `mapstructure:"authAuto"`
	AuthDisplay          bool   `mapstructure:"authDisplay"`
	AuthUsername         string `mapstructure:"authUsername"`
	AuthPassword         string `mapstructure:"authPassword"`
	AuthLoginURL         string `mapstructure:"authLoginURL"`
	AuthUsernameField    string `mapstructure:"authUsernameField"`
	AuthPasswordField    string `mapstructure:"authPasswordField"`
	AuthSubmitField      string `mapstructure:"authSubmitField"`
	AuthFirstSubmitField string `mapstructure:"authFirstSubmitField"`

	ZapOptions     string `mapstructure:"zapOptions"`
	RequestCookies string `mapstructure:"requestCookies"`
	RequestHeader  string `mapstructure:"requestHeader"`

	CommitHash           string `mapstructure:"commitHash"`
	BranchName           string `mapstructure:"branchName"`
	BranchURI            string `mapstructure:"branchURI"`
	BuildVersion         string `mapstructure:"buildVersion"`
	BuildURI             string `mapstructure:"buildURI"`
	OperatingEnvironment string `mapstructure:"operatingEnvironment"`

	Sarif     bool   `mapstructure:"sarif"`
	GithubPAT string `mapstructure:"gpat"`
}

// ContextOptions mirrors the nested `context` mapping of the config file.
type ContextOptions struct {
	File string `mapstructure:"file"`
	User string `mapstructure:"user"`
}

// FullScanOptions mirrors the nested `fullScan` mapping of the config file.
type FullScanOptions struct {
	Minutes string `mapstructure:"minutes"`
}

// APIScanOptions mirrors the nested `apiScan` mapping of the config file.
type APIScanOptions struct {
	Format string `mapstructure:"format"`
}

// AddFlags registers every CLI flag on the given flag set, bound to the
// Options fields. The positional target URL is handled by the command
// itself.
func AddFlags(flags *pflag.FlagSet, opts *Options) {
	flags.StringVar(&opts.ConfigFile, "configFile", "", "YAML file with the configuration for the DAST analysis")
	flags.StringVar(&opts.ClientID, "clientId", "", "SOOS client id")
	flags.StringVar(&opts.APIKey, "apiKey", "", "SOOS API key")
	flags.StringVar(&opts.ProjectName, "projectName", "", "project name to be displayed in the SOOS application")
	flags.StringVar(&opts.ScanMode, "scanMode", "baseline", "scan mode: baseline, fullscan, apiscan, or activescan")
	flags.StringVar(&opts.APIURL, "apiURL", "", "SOOS API URL")
	flags.BoolVar(&opts.FailOnError, "failOnError", false, "fail the build when the analysis reports an error")
	flags.BoolVar(&opts.Debug, "debug", false, "show debug messages")
	flags.BoolVar(&opts.AjaxSpider, "ajaxSpider", false, "use the Ajax spider in addition to the traditional one")
	flags.StringVar(&opts.Rules, "rules", "", "rules file to use to INFO, IGNORE or FAIL warnings")
	flags.StringVar(&opts.ContextFile, "contextFile", "", "context file which will be loaded prior to scanning the target")
	flags.StringVar(&opts.ContextUser, "contextUser", "", "username to use for authenticated scans - must be defined in the given context file")
	flags.StringVar(&opts.FullScanMinutes, "fullScanMinutes", "", "number of minutes for the spider to run")
	flags.StringVar(&opts.APIScanFormat, "apiScanFormat", "", "target API format: openapi, soap, or graphql")
	flags.StringVar(&opts.Level, "level", "", "minimum level to show: PASS, IGNORE, INFO, WARN or FAIL")
	flags.StringVar(&opts.IntegrationName, "integrationName", "", "integration name (e.g. the CI provider)")
	flags.BoolVar(&opts.AuthAuto, "authAuto", false, "automatically attempt to log in to the target")
	flags.BoolVar(&opts.AuthDisplay, "authDisplay", false, "run the login automation with a visible display")
	flags.StringVar(&opts.AuthUsername, "authUsername", "", "username to use in auth apps")
	flags.StringVar(&opts.AuthPassword, "authPassword", "", "password to use in auth apps")
	flags.StringVar(&opts.AuthLoginURL, "authLoginURL", "", "login url to use in auth apps")
	flags.StringVar(&opts.AuthUsernameField, "authUsernameField", "", "username input id to use in auth apps")
	flags.StringVar(&opts.AuthPasswordField, "authPasswordField", "", "password input id to use in auth apps")
	flags.StringVar(&opts.AuthSubmitField, "authSubmitField", "", "submit button id to use in auth apps")
	flags.StringVar(&opts.AuthFirstSubmitField, "authFirstSubmitField", "", "first submit button id to use in auth apps")
	flags.StringVar(&opts.ZapOptions, "zapOptions", "", "additional ZAP options")
	flags.StringVar(&opts.RequestCookies, "requestCookies", "", "cookie values for the requests to the target URL")
	flags.StringVar(&opts.RequestHeader, "requestHeader", "", "extra header for the requests to the target URL")
	flags.StringVar(&opts.CommitHash, "commitHash", "", "commit hash value")
	flags.StringVar(&opts.BranchName, "branchName", "", "branch name")
	flags.StringVar(&opts.BranchURI, "branchURI", "", "branch URI")
	flags.StringVar(&opts.BuildVersion, "buildVersion", "", "build version")
	flags.StringVar(&opts.BuildURI, "buildURI", "", "build URI")
	flags.StringVar(&opts.OperatingEnvironment, "operatingEnvironment", "", "operating environment")
	flags.BoolVar(&opts.Sarif, "sarif", false, "upload a SARIF report to GitHub")
	flags.StringVar(&opts.GithubPAT, "gpat", "", "GitHub personal access token")
}
