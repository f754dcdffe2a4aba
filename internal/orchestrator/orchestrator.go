package orchestrator

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/soos-io/soos-dast/internal/api"
	"github.com/soos-io/soos-dast/internal/config"
	"github.com/soos-io/soos-dast/internal/sarif"
	"github.com/soos-io/soos-dast/internal/scan"
)

var lineSeparator = strings.Repeat("-", 80)

// Orchestrator sequences one analysis run: pre-flight check, remote
// registration, scanner execution, result upload, optional SARIF
// publication, and the final status report. Failures after registration
// are reported to the remote service exactly once before they surface.
type Orchestrator struct {
	cfg       *config.AnalysisConfig
	client    *api.Client
	executor  *scan.Executor
	publisher *sarif.Publisher
	preflight *http.Client
	logger    *zerolog.Logger
}

func New(cfg *config.AnalysisConfig, logger *zerolog.Logger) *Orchestrator {
	client := api.NewClient(cfg, logger)
	return &Orchestrator{
		cfg:       cfg,
		client:    client,
		executor:  scan.NewExecutor(logger),
		publisher: sarif.NewPublisher(cfg, client, logger),
		preflight: http.DefaultClient,
		logger:    logger,
	}
}

// Run drives the full lifecycle. The returned error is terminal; the
// caller only maps it to the process exit code.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info().Msg("Starting SOOS DAST Analysis")
	o.separator()

	o.logger.Info().Msgf("Project Name: %v", o.cfg.ProjectName)
	o.logger.Info().Msgf("Scan Mode: %v", o.cfg.ScanMode)
	o.logger.Info().Msgf("API URL: %v", o.cfg.BaseURI)
	o.logger.Info().Msgf("Target URL: %v", o.cfg.TargetURL)
	o.separator()

	if !o.targetAvailable(ctx) {
		return &UnreachableTargetError{TargetURL: o.cfg.TargetURL}
	}

	o.logger.Info().Msgf("Executing %v scan", o.cfg.ScanMode)
	session, err := o.client.StartAnalysis(ctx, o.cfg)
	if err != nil {
		// no session exists, there is nothing to report against
		return err
	}

	command, err := scan.BuildCommand(o.cfg)
	if err != nil {
		return o.reportError(ctx, session, err)
	}
	o.logger.Info().Msgf("Command to be executed: %v", command)

	// SetStatus handles its own failure notification
	if err := o.client.SetStatus(ctx, session, api.StatusRunning, ""); err != nil {
		return err
	}

	reportPath := o.cfg.ReportFilePath()
	if ok := o.executor.Execute(ctx, command, reportPath); !ok {
		execErr := &ScanExecutionError{ScanMode: o.cfg.ScanMode.String()}
		return o.reportError(ctx, session, execErr)
	}
	o.separator()

	if err := o.client.UploadResults(ctx, session, reportPath); err != nil {
		return o.reportError(ctx, session, err)
	}

	o.separator()
	o.logger.Info().Msg("Report processed successfully")
	o.logger.Info().Msgf("Project Id: %v", session.ProjectID)
	o.logger.Info().Msgf("Branch Hash: %v", session.BranchHash)
	o.logger.Info().Msgf("Analysis Id: %v", session.AnalysisID)
	o.separator()
	o.logger.Info().Msg("SOOS DAST Analysis successful")
	o.logger.Info().Msgf("Project URL: %v", session.ScanURL)
	o.separator()

	if o.cfg.GenerateSarif {
		o.publisher.Publish(ctx, session)
	}

	return o.client.SetStatus(ctx, session, api.StatusFinished, "")
}

// reportError notifies the remote service once, then hands the original
// error back to the caller.
func (o *Orchestrator) reportError(ctx context.Context, session *api.AnalysisSession, cause error) error {
	_ = o.client.SetStatus(ctx, session, api.StatusError, cause.Error())
	return cause
}

// targetAvailable checks that the target answers at all. Any HTTP response
// counts, only a transport failure marks the target unreachable.
func (o *Orchestrator) targetAvailable(ctx context.Context) bool {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, o.cfg.TargetURL, nil)
	if err != nil {
		return false
	}
	response, err := o.preflight.Do(request)
	if err != nil {
		return false
	}
	_ = response.Body.Close()
	return true
}

func (o *Orchestrator) separator() {
	o.logger.Info().Msg(lineSeparator)
}
