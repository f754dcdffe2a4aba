package api

import "encoding/json"

// ScanStatus is the remote lifecycle status of an analysis.
type ScanStatus string

const (
	StatusRunning  ScanStatus = "Running"
	StatusFinished ScanStatus = "Finished"
	StatusError    ScanStatus = "Error"
)

// AnalysisSession holds the server-assigned identifiers correlating one
// run's remote calls. It is created once from the start-analysis response
// and read-only afterwards.
type AnalysisSession struct {
	AnalysisID    string
	BranchHash    string
	ProjectID     string
	ScanType      string
	ScanURL       string
	ScanStatusURL string
	Errors        json.RawMessage
}

// UnmarshalJSON normalizes the project identifier, which the API has
// historically delivered under either of two field names.
func (s *AnalysisSession) UnmarshalJSON(data []byte) error {
	var raw struct {
		AnalysisID    string          `json:"analysisId"`
		BranchHash    string          `json:"branchHash"`
		ScanType      string          `json:"scanType"`
		ScanURL       string          `json:"scanUrl"`
		ScanStatusURL string          `json:"scanStatusUrl"`
		Errors        json.RawMessage `json:"errors"`
		ProjectID     string          `json:"projectId"`
		ProjectHash   string          `json:"projectHash"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.AnalysisID = raw.AnalysisID
	s.BranchHash = raw.BranchHash
	s.ScanType = raw.ScanType
	s.ScanURL = raw.ScanURL
	s.ScanStatusURL = raw.ScanStatusURL
	s.Errors = raw.Errors
	s.ProjectID = raw.ProjectID
	if s.ProjectID == "" {
		s.ProjectID = raw.ProjectHash
	}
	return nil
}

// RemoteCallError is a non-success HTTP outcome that survived the retry
// budget. Message carries the deepest available context, preferring the
// error body of the last response.
type RemoteCallError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *RemoteCallError) Error() string {
	return e.Message
}
