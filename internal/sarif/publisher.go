package sarif

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/soos-io/soos-dast/internal/api"
	"github.com/soos-io/soos-dast/internal/config"
	"github.com/soos-io/soos-dast/internal/constants"
)

// githubErrorMessages translates the documented GitHub SARIF ingestion
// failure codes into actionable text.
var githubErrorMessages = map[int]string{
	http.StatusBadRequest:            "Github: The sarif report is invalid",
	http.StatusForbidden:             "Github: The repository is archived or github advanced security is not enabled for this repository",
	http.StatusNotFound:              "Github: Resource not found",
	http.StatusRequestEntityTooLarge: "Github: The sarif report is too large",
	http.StatusServiceUnavailable:    "Github: Service Unavailable",
}

const genericGithubError = "An unexpected error has occurred uploading the sarif report to GitHub"

// Publisher fetches the SARIF rendering of a finished analysis and
// republishes it to GitHub code scanning. Publication is auxiliary: every
// failure is logged and swallowed, the analysis lifecycle never depends
// on it.
type Publisher struct {
	cfg       *config.AnalysisConfig
	apiClient *api.Client
	github    *http.Client
	// GithubURL is the SARIF ingestion endpoint, derived from the project name.
	GithubURL string
	logger    *zerolog.Logger
}

func NewPublisher(cfg *config.AnalysisConfig, apiClient *api.Client, logger *zerolog.Logger) *Publisher {
	return &Publisher{
		cfg:       cfg,
		apiClient: apiClient,
		github:    http.DefaultClient,
		GithubURL: fmt.Sprintf(constants.URI_GITHUB_SARIF_TEMPLATE, cfg.ProjectName),
		logger:    logger,
	}
}

// Publish runs the full publication path and never fails the caller.
func (p *Publisher) Publish(ctx context.Context, session *api.AnalysisSession) {
	p.logger.Info().Msg("Uploading SARIF Response")

	if err := p.publish(ctx, session); err != nil {
		p.logger.Error().Msgf("sarif publication failed: %v", err)
	}
}

func (p *Publisher) publish(ctx context.Context, session *api.AnalysisSession) error {
	report, err := p.apiClient.FetchSarifReport(ctx, session)
	if err != nil {
		return err
	}

	compressed, err := compressReport(report)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"commit_sha": p.cfg.CommitHash,
		"ref":        p.cfg.BranchName,
		"sarif":      compressed,
	})
	if err != nil {
		return errors.Wrap(err, "encoding github request")
	}

	outcome, err := p.githubRequest(ctx, http.MethodPost, p.GithubURL, payload)
	if err != nil {
		return err
	}
	if !outcome.OK() {
		p.logger.Error().Msg(githubErrorMessage(outcome))
		return nil
	}

	var uploaded struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(outcome.Body, &uploaded); err != nil {
		return errors.Wrap(err, "decoding github response")
	}

	// single status check, no polling
	statusOutcome, err := p.githubRequest(ctx, http.MethodGet, uploaded.URL, nil)
	if err != nil {
		return err
	}
	if !statusOutcome.OK() {
		p.logger.Error().Msg(githubErrorMessage(statusOutcome))
		return nil
	}

	var status struct {
		ProcessingStatus string `json:"processing_status"`
	}
	if err := json.Unmarshal(statusOutcome.Body, &status); err != nil {
		return errors.Wrap(err, "decoding github status response")
	}

	p.logger.Info().Msg("SARIF Report uploaded to GitHub")
	p.logger.Info().Msgf("Processing Status: %v", status.ProcessingStatus)
	return nil
}

func (p *Publisher) githubRequest(ctx context.Context, method string, url string, payload []byte) (api.Outcome, error) {
	request, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return api.Outcome{}, errors.Wrap(err, "building github request")
	}
	request.Header.Set("Accept", constants.GITHUB_ACCEPT_HEADER)
	request.Header.Set("Authorization", "token "+p.cfg.GithubPAT)

	response, err := p.github.Do(request)
	if err != nil {
		return api.Outcome{}, errors.Wrap(err, "calling github")
	}
	return api.ReadOutcome(response), nil
}

// githubErrorMessage resolves the failure text: the status lookup table
// first, then the message of the response body, then a generic fallback.
func githubErrorMessage(outcome api.Outcome) string {
	if message, known := githubErrorMessages[outcome.StatusCode]; known {
		return message
	}
	return outcome.Message(genericGithubError)
}

func compressReport(report json.RawMessage) (string, error) {
	buffer := &bytes.Buffer{}
	writer := gzip.NewWriter(buffer)
	if _, err := writer.Write(report); err != nil {
		return "", errors.Wrap(err, "compressing sarif report")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "compressing sarif report")
	}
	return base64.StdEncoding.EncodeToString(buffer.Bytes()), nil
}
