package constants

const SOOS_DEFAULT_API_URL = "https://api.soos.io/api/"
const SOOS_CLIENT_ID_ENV_KEY = "SOOS_CLIENT_ID"
const SOOS_API_KEY_ENV_KEY = "SOOS_API_KEY"
const SOOS_API_KEY_HEADER = "x-soos-apikey"

const DEFAULT_INTEGRATION_NAME = "None"
const DEFAULT_INTEGRATION_TYPE = "Script"
const DEFAULT_DAST_TOOL = "zap"
const SCRIPT_VERSION = "alpha"

// Remote call retry budgets. Attempts are immediate, there is no backoff
// delay between them.
const MAX_RETRY_COUNT = 3
const SARIF_RETRY_COUNT = 3

// URL templates for the analysis API. Base URI carries a trailing slash.
const URI_START_ANALYSIS_TEMPLATE = "%vclients/%v/scan-types/dast/scans"
const URI_ANALYSIS_SCAN_TEMPLATE = "%vclients/%v/projects/%v/branches/%v/scan-types/dast/scans/%v"
const URI_ANALYSIS_SARIF_TEMPLATE = "%vclients/%v/projects/%v/branches/%v/scan-types/dast/scans/%v/formats/sarif"
const URI_GITHUB_SARIF_TEMPLATE = "https://api.github.com/repos/%v/code-scanning/sarifs"

// External scanner invocation. The scanner scripts ship inside the ZAP
// container image, one script per scan mode.
const PY_CMD = "python3"
const BASELINE_SCRIPT = "/zap/zap-baseline.py"
const FULL_SCAN_SCRIPT = "/zap/zap-full-scan.py"
const API_SCAN_SCRIPT = "/zap/zap-api-scan.py"

const ZAP_TARGET_URL_OPTION = "-t"
const ZAP_RULES_FILE_OPTION = "-c"
const ZAP_CONTEXT_FILE_OPTION = "-n"
const ZAP_DEBUG_OPTION = "-d"
const ZAP_AJAX_SPIDER_OPTION = "-j"
const ZAP_MINUTES_DELAY_OPTION = "-m"
const ZAP_FORMAT_OPTION = "-f"
const ZAP_MINIMUM_LEVEL_OPTION = "-l"
const ZAP_OTHER_OPTIONS = "-z"
const ZAP_HOOK_OPTION = "--hook"
const ZAP_JSON_REPORT_OPTION = "-J"

const ZAP_HOOK_SCRIPT = "/zap/hooks/soos_dast_hook.py"

// The scanner writes its JSON report into the shared work directory. The
// report file showing up after the scanner exits is what counts as a
// successful scan, not the exit code.
const REPORT_SCAN_RESULT_FILENAME = "report.json"
const REPORT_WORK_DIR = "/zap/wrk"

const JSON_CONTENT_TYPE = "application/json"
const GITHUB_ACCEPT_HEADER = "application/vnd.github.v3+json"
