package api

import (
	"fmt"

	"github.com/soos-io/soos-dast/internal/constants"
)

func startAnalysisURL(baseURI string, clientID string) string {
	return fmt.Sprintf(constants.URI_START_ANALYSIS_TEMPLATE, baseURI, clientID)
}

func analysisScanURL(baseURI string, clientID string, session *AnalysisSession) string {
	return fmt.Sprintf(constants.URI_ANALYSIS_SCAN_TEMPLATE,
		baseURI, clientID, session.ProjectID, session.BranchHash, session.AnalysisID)
}

func analysisSarifURL(baseURI string, clientID string, session *AnalysisSession) string {
	return fmt.Sprintf(constants.URI_ANALYSIS_SARIF_TEMPLATE,
		baseURI, clientID, session.ProjectID, session.BranchHash, session.AnalysisID)
}
