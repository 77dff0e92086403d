package unit_tests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibegrapher/internal/api"
	"vibegrapher/internal/services"
	"vibegrapher/internal/tests/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAPIServer(t *testing.T, f *diffFixture) http.Handler {
	t.Helper()
	projects := &mocks.ProjectRepositoryMock{}
	svcs := &services.Services{
		Projects: services.NewProjectService(projects, f.git),
		Sessions: services.NewSessionService(&mocks.SessionRepositoryMock{}, f.messages, projects),
		Pipeline: f.pipelineFixture.service,
		Diffs:    f.service,
		Git:      f.git,
	}
	return api.NewServer(svcs, f.hub).Router()
}

func TestAPI_GetDiff(t *testing.T) {
	f := newDiffFixture(t)
	router := newAPIServer(t, f)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diffs/"+f.diff.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.diff.ID)
}

func TestAPI_UnknownDiffIs404(t *testing.T) {
	f := newDiffFixture(t)
	router := newAPIServer(t, f)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diffs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_StaleBaseCommitIs409(t *testing.T) {
	f := newDiffFixture(t)
	router := newAPIServer(t, f)

	_, err := f.git.CommitContent(f.project, "something else\n", "move head")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/diffs/"+f.diff.ID+"/commit", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "stale_base")
}

func TestAPI_CommittingTwiceIs409(t *testing.T) {
	f := newDiffFixture(t)
	router := newAPIServer(t, f)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/diffs/"+f.diff.ID+"/commit", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/diffs/"+f.diff.ID+"/commit", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_status")
}

func TestAPI_ReviewRequiresDecision(t *testing.T) {
	f := newDiffFixture(t)
	router := newAPIServer(t, f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/diffs/"+f.diff.ID+"/review", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RejectDiff(t *testing.T) {
	f := newDiffFixture(t)
	f.generator.Respond(textResponse(t, "revised approach"))
	router := newAPIServer(t, f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/diffs/"+f.diff.ID+"/review",
		strings.NewReader(`{"decision":"reject","feedback":"prefer keyword args"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected_by_human")
}

func TestAPI_CreateProjectValidation(t *testing.T) {
	f := newDiffFixture(t)
	router := newAPIServer(t, f)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
