package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soos-io/soos-dast/internal/config"
	"github.com/soos-io/soos-dast/internal/constants"
)

func testClient(serverURL string) *Client {
	logger := zerolog.Nop()
	cfg := &config.AnalysisConfig{
		ClientID:    "client-1",
		APIKey:      "key-1",
		BaseURI:     serverURL + "/",
		ProjectName: "My Project",
		TargetURL:   "https://www.example.com",
		ScanMode:    config.ScanModeBaseline,
		DASTTool:    constants.DEFAULT_DAST_TOOL,
	}
	return NewClient(cfg, &logger)
}

func testConfig(serverURL string) *config.AnalysisConfig {
	return &config.AnalysisConfig{
		ClientID:        "client-1",
		APIKey:          "key-1",
		BaseURI:         serverURL + "/",
		ProjectName:     "My Project",
		TargetURL:       "https://www.example.com",
		ScanMode:        config.ScanModeBaseline,
		IntegrationName: "CircleCI",
		IntegrationType: constants.DEFAULT_INTEGRATION_TYPE,
		DASTTool:        constants.DEFAULT_DAST_TOOL,
		CommitHash:      "abc123",
		BranchName:      "main",
	}
}

func testSession() *AnalysisSession {
	return &AnalysisSession{
		AnalysisID: "analysis-1",
		BranchHash: "branch-1",
		ProjectID:  "project-1",
	}
}

func Test_StartAnalysis_Success(t *testing.T) {
	var capturedBody map[string]string
	var capturedHeader http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/clients/client-1/scan-types/dast/scans", r.URL.Path)
		capturedHeader = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"analysisId":  "analysis-1",
			"branchHash":  "branch-1",
			"projectHash": "project-1",
			"scanType":    "dast",
			"scanUrl":     "https://app.soos.io/scan/1",
		})
	}))
	defer server.Close()

	session, err := testClient(server.URL).StartAnalysis(context.Background(), testConfig(server.URL))
	require.NoError(t, err)

	assert.Equal(t, "analysis-1", session.AnalysisID)
	assert.Equal(t, "branch-1", session.BranchHash)
	// projectHash must be normalized to the project id
	assert.Equal(t, "project-1", session.ProjectID)

	assert.Equal(t, "key-1", capturedHeader.Get(constants.SOOS_API_KEY_HEADER))
	assert.Equal(t, constants.JSON_CONTENT_TYPE, capturedHeader.Get("Content-Type"))

	assert.Equal(t, "My Project", capturedBody["projectName"])
	assert.Equal(t, "CircleCI", capturedBody["integrationName"])
	assert.Equal(t, "abc123", capturedBody["commitHash"])
	assert.NotEmpty(t, capturedBody["name"])
	// empty metadata fields are omitted from the body
	assert.NotContains(t, capturedBody, "buildVersion")
	assert.NotContains(t, capturedBody, "buildUri")
}

func Test_StartAnalysis_FirstSuccessShortCircuits(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"analysisId": "a", "branchHash": "b", "projectId": "p"})
	}))
	defer server.Close()

	_, err := testClient(server.URL).StartAnalysis(context.Background(), testConfig(server.URL))
	require.NoError(t, err)
	assert.EqualValues(t, 1, attempts)
}

func Test_StartAnalysis_ExhaustionUsesErrorBodyMessage(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"server down"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).StartAnalysis(context.Background(), testConfig(server.URL))
	require.Error(t, err)

	var remoteErr *RemoteCallError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "server down", remoteErr.Message)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.EqualValues(t, constants.MAX_RETRY_COUNT, attempts)
}

func Test_StartAnalysis_ExhaustionWithoutBodyMessageFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL).StartAnalysis(context.Background(), testConfig(server.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "An error has occurred Starting the Analysis")
}

func Test_SetStatus_Success(t *testing.T) {
	var capturedBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/clients/client-1/projects/project-1/branches/branch-1/scan-types/dast/scans/analysis-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := testClient(server.URL).SetStatus(context.Background(), testSession(), StatusRunning, "")
	require.NoError(t, err)
	assert.Equal(t, "Running", capturedBody["status"])
	assert.NotContains(t, capturedBody, "message")
}

func Test_SetStatus_MessageIncludedWhenGiven(t *testing.T) {
	var capturedBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
	}))
	defer server.Close()

	err := testClient(server.URL).SetStatus(context.Background(), testSession(), StatusError, "it broke")
	require.NoError(t, err)
	assert.Equal(t, "Error", capturedBody["status"])
	assert.Equal(t, "it broke", capturedBody["message"])
}

func Test_SetStatus_ExhaustionSelfNotifiesExactlyOnce(t *testing.T) {
	var bodies []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"status endpoint down"}`))
	}))
	defer server.Close()

	err := testClient(server.URL).SetStatus(context.Background(), testSession(), StatusRunning, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status endpoint down")

	// primary call retried MAX_RETRY_COUNT times, then one secondary
	// self-notify with status Error, itself retried but never recursing
	require.Len(t, bodies, 2*constants.MAX_RETRY_COUNT)
	for i := 0; i < constants.MAX_RETRY_COUNT; i++ {
		assert.Equal(t, "Running", bodies[i]["status"])
	}
	for i := constants.MAX_RETRY_COUNT; i < 2*constants.MAX_RETRY_COUNT; i++ {
		assert.Equal(t, "Error", bodies[i]["status"])
		assert.Equal(t, "status endpoint down", bodies[i]["message"])
	}
}

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func Test_UploadResults_Success(t *testing.T) {
	reportPath := writeReport(t, `{"@version":"2.1.0","site":[]}`)

	var capturedVersion string
	var capturedManifest []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		capturedVersion = r.FormValue("resultVersion")

		file, _, err := r.FormFile("base64Manifest")
		require.NoError(t, err)
		defer file.Close()
		encoded := make([]byte, 1<<20)
		n, _ := file.Read(encoded)
		capturedManifest, err = base64.StdEncoding.DecodeString(string(encoded[:n]))
		require.NoError(t, err)
	}))
	defer server.Close()

	err := testClient(server.URL).UploadResults(context.Background(), testSession(), reportPath)
	require.NoError(t, err)

	assert.Equal(t, "2.1.0", capturedVersion)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal(capturedManifest, &manifest))
	assert.Equal(t, "2.1.0", manifest["@version"])
}

func Test_UploadResults_SuccessDependsOnlyOnStatusCode(t *testing.T) {
	reportPath := writeReport(t, `{"@version":"2.1.0"}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a body that is not even JSON must not fail the upload
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	err := testClient(server.URL).UploadResults(context.Background(), testSession(), reportPath)
	assert.NoError(t, err)
}

func Test_UploadResults_ExhaustionSurfacesMessage(t *testing.T) {
	reportPath := writeReport(t, `{"@version":"2.1.0"}`)

	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad manifest"}`))
	}))
	defer server.Close()

	err := testClient(server.URL).UploadResults(context.Background(), testSession(), reportPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad manifest")
	assert.EqualValues(t, constants.MAX_RETRY_COUNT, attempts)
}

func Test_UploadResults_MissingReportFileFailsWithoutRequest(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
	}))
	defer server.Close()

	err := testClient(server.URL).UploadResults(context.Background(), testSession(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.EqualValues(t, 0, attempts)
}

func Test_UploadResults_ReportWithoutVersionFails(t *testing.T) {
	reportPath := writeReport(t, `{"site":[]}`)

	err := testClient("http://127.0.0.1:1").UploadResults(context.Background(), testSession(), reportPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@version")
}

func Test_FetchSarifReport_RetriesThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "/clients/client-1/projects/project-1/branches/branch-1/scan-types/dast/scans/analysis-1/formats/sarif", r.URL.Path)
		_, _ = w.Write([]byte(`{"version":"2.1.0","runs":[]}`))
	}))
	defer server.Close()

	report, err := testClient(server.URL).FetchSarifReport(context.Background(), testSession())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"2.1.0","runs":[]}`, string(report))
	assert.EqualValues(t, 3, attempts)
}

func Test_FetchSarifReport_Exhaustion(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchSarifReport(context.Background(), testSession())
	require.Error(t, err)
	assert.EqualValues(t, constants.SARIF_RETRY_COUNT, attempts)
}
