package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/soos-io/soos-dast/internal/config"
	"github.com/soos-io/soos-dast/internal/constants"
	"github.com/soos-io/soos-dast/internal/networking"
)

// Client wraps the three analysis API calls (start, set status, upload
// results) with a bounded, immediate retry. A successful attempt
// short-circuits the loop; exhaustion surfaces a RemoteCallError whose
// message comes from the last error body when one is available.
type Client struct {
	baseURI    string
	clientID   string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(cfg *config.AnalysisConfig, logger *zerolog.Logger) *Client {
	network := networking.NewNetworkAccess()
	network.AddHeaderField(constants.SOOS_API_KEY_HEADER, cfg.APIKey)

	return &Client{
		baseURI:    cfg.BaseURI,
		clientID:   cfg.ClientID,
		httpClient: network.GetHttpClient(),
		logger:     logger,
	}
}

// StartAnalysis registers the run with the analysis API and returns the
// session identifiers every later call is scoped by. There is no session
// to report failures against yet, so exhaustion here is terminal for the
// caller.
func (c *Client) StartAnalysis(ctx context.Context, cfg *config.AnalysisConfig) (*AnalysisSession, error) {
	if cfg.TargetURL == "" || cfg.ProjectName == "" {
		return nil, errors.New("targetURL and projectName are required")
	}

	body := cleanBody(map[string]string{
		"projectName":          cfg.ProjectName,
		"name":                 time.Now().Format("01/02/2006, 15:04:05"),
		"integrationType":      cfg.IntegrationType,
		"scriptVersion":        constants.SCRIPT_VERSION,
		"toolName":             cfg.DASTTool,
		"commitHash":           cfg.CommitHash,
		"branch":               cfg.BranchName,
		"branchUri":            cfg.BranchURI,
		"buildVersion":         cfg.BuildVersion,
		"buildUri":             cfg.BuildURI,
		"operationEnvironment": cfg.OperatingEnvironment,
		"integrationName":      cfg.IntegrationName,
	})
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encoding start analysis request")
	}

	url := startAnalysisURL(c.baseURI, c.clientID)
	c.logger.Debug().Msgf("start analysis endpoint: %v", url)

	outcome, err := c.retryRequest(ctx, http.MethodPost, url, payload, constants.JSON_CONTENT_TYPE)
	if err != nil {
		return nil, &RemoteCallError{
			Operation:  "start analysis",
			StatusCode: outcome.StatusCode,
			Message:    outcome.Message("An error has occurred Starting the Analysis"),
		}
	}

	session := &AnalysisSession{}
	if err := json.Unmarshal(outcome.Body, session); err != nil {
		return nil, errors.Wrap(err, "decoding start analysis response")
	}
	return session, nil
}

// SetStatus reports the scan status to the session's status resource. When
// the retry budget is exhausted, one secondary best-effort call with
// status Error is made before the failure is returned; the secondary call
// never recurses further.
func (c *Client) SetStatus(ctx context.Context, session *AnalysisSession, status ScanStatus, message string) error {
	return c.setStatus(ctx, session, status, message, true)
}

func (c *Client) setStatus(ctx context.Context, session *AnalysisSession, status ScanStatus, message string, selfNotify bool) error {
	body := cleanBody(map[string]string{
		"status":  string(status),
		"message": message,
	})
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encoding status request")
	}

	url := analysisScanURL(c.baseURI, c.clientID, session)
	c.logger.Debug().Msgf("scan status endpoint: %v", url)

	outcome, err := c.retryRequest(ctx, http.MethodPatch, url, payload, constants.JSON_CONTENT_TYPE)
	if err != nil {
		failure := outcome.Message("An error has occurred setting the scan status")
		if selfNotify {
			_ = c.setStatus(ctx, session, StatusError, failure, false)
		}
		return &RemoteCallError{
			Operation:  "set scan status",
			StatusCode: outcome.StatusCode,
			Message:    failure,
		}
	}

	c.logger.Debug().Msgf("scan status set to %v", status)
	return nil
}

// UploadResults reads the scanner's JSON report, re-serializes it, and
// PUTs it base64-encoded as a multipart field together with the report's
// own @version value.
func (c *Client) UploadResults(ctx context.Context, session *AnalysisSession, reportPath string) error {
	c.logger.Info().Msg("Starting report results processing")

	raw, err := os.ReadFile(reportPath)
	if err != nil {
		return errors.Wrapf(err, "reading scan report %v", reportPath)
	}

	var report map[string]interface{}
	if err := json.Unmarshal(raw, &report); err != nil {
		return errors.Wrap(err, "parsing scan report")
	}
	version, _ := report["@version"].(string)
	if version == "" {
		return errors.New("the scan report has no @version field")
	}
	normalized, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "re-encoding scan report")
	}

	payload, contentType, err := buildUploadBody(version, normalized)
	if err != nil {
		return err
	}

	url := analysisScanURL(c.baseURI, c.clientID, session)
	c.logger.Debug().Msgf("upload results endpoint: %v", url)

	outcome, err := c.retryRequest(ctx, http.MethodPut, url, payload, contentType)
	if err != nil {
		return &RemoteCallError{
			Operation:  "upload results",
			StatusCode: outcome.StatusCode,
			Message:    outcome.Message("An error has occurred uploading the scan results"),
		}
	}

	c.logger.Info().Msg("SOOS Upload Success")
	return nil
}

// FetchSarifReport retrieves the SARIF rendering of the analysis. It uses
// its own retry budget; failures are non-fatal for the run, so a plain
// error is returned for the publisher to log.
func (c *Client) FetchSarifReport(ctx context.Context, session *AnalysisSession) (json.RawMessage, error) {
	url := analysisSarifURL(c.baseURI, c.clientID, session)
	c.logger.Debug().Msgf("sarif report endpoint: %v", url)

	var lastOutcome Outcome
	attempt := 0
	op := func() (json.RawMessage, error) {
		attempt++
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		request.Header.Set("Content-Type", constants.JSON_CONTENT_TYPE)

		response, err := c.httpClient.Do(request)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		outcome := ReadOutcome(response)
		if !outcome.OK() {
			lastOutcome = outcome
			c.logger.Warn().Msgf("A Generate SARIF Report API exception occurred. Attempt %v of %v: %v-%v",
				attempt, constants.SARIF_RETRY_COUNT, outcome.StatusCode,
				outcome.Message("no message"))
			return nil, &RemoteCallError{StatusCode: outcome.StatusCode}
		}
		return outcome.Body, nil
	}

	report, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(constants.SARIF_RETRY_COUNT))
	if err != nil {
		return nil, &RemoteCallError{
			Operation:  "generate sarif report",
			StatusCode: lastOutcome.StatusCode,
			Message:    lastOutcome.Message("An error has occurred generating the SARIF report"),
		}
	}
	return report, nil
}

// retryRequest performs the request up to MAX_RETRY_COUNT times with no
// delay between attempts. The returned Outcome is the successful one, or
// the last failed one when err is non-nil.
func (c *Client) retryRequest(ctx context.Context, method string, url string, payload []byte, contentType string) (Outcome, error) {
	var lastOutcome Outcome
	attempt := 0

	op := func() (Outcome, error) {
		attempt++
		request, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return Outcome{}, backoff.Permanent(err)
		}
		request.Header.Set("Content-Type", contentType)

		response, err := c.httpClient.Do(request)
		if err != nil {
			return Outcome{}, backoff.Permanent(err)
		}

		outcome := ReadOutcome(response)
		if !outcome.OK() {
			lastOutcome = outcome
			c.logger.Warn().Msgf("An error has occurred performing the request. Retrying Request: %v attempts", attempt)
			return outcome, &RemoteCallError{StatusCode: outcome.StatusCode}
		}
		return outcome, nil
	}

	outcome, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(constants.MAX_RETRY_COUNT))
	if err != nil {
		return lastOutcome, err
	}
	return outcome, nil
}

func buildUploadBody(resultVersion string, report []byte) ([]byte, string, error) {
	encoded := base64.StdEncoding.EncodeToString(report)

	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)
	if err := writer.WriteField("resultVersion", resultVersion); err != nil {
		return nil, "", errors.Wrap(err, "building upload request")
	}
	part, err := writer.CreateFormFile("base64Manifest", "base64Manifest")
	if err != nil {
		return nil, "", errors.Wrap(err, "building upload request")
	}
	if _, err := part.Write([]byte(encoded)); err != nil {
		return nil, "", errors.Wrap(err, "building upload request")
	}
	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "building upload request")
	}
	return buffer.Bytes(), writer.FormDataContentType(), nil
}

// cleanBody drops empty values so they are omitted from the request body.
func cleanBody(fields map[string]string) map[string]string {
	body := map[string]string{}
	for k, v := range fields {
		if v != "" {
			body[k] = v
		}
	}
	return body
}
