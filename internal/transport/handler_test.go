package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nurseward/rosterd/internal/roster"
)

type fakeStore struct {
	requests []roster.HardRequest
	err      error
}

func (f fakeStore) ApprovedHardRequests(ctx context.Context, start, end time.Time, nurseIDs []string) ([]roster.HardRequest, error) {
	return f.requests, f.err
}

func newTestHandler(s fakeStore, origins []string) *Handler {
	return NewHandler(s, zap.NewNop(), origins)
}

func TestGenerateSchedule_RejectsInvalidJSON(t *testing.T) {
	h := newTestHandler(fakeStore{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/generate-schedule", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateSchedule_RejectsFailedNormalization(t *testing.T) {
	h := newTestHandler(fakeStore{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/generate-schedule", strings.NewReader(`{"nurses":[]}`))
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nurses")
}

func TestOriginAllowed(t *testing.T) {
	h := newTestHandler(fakeStore{}, []string{"https://example.com", "*"})

	assert.True(t, h.originAllowed("https://example.com"))
	assert.True(t, h.originAllowed("https://anything.test"))
	assert.False(t, h.originAllowed(""))
}

func TestOriginAllowed_Restrictive(t *testing.T) {
	h := newTestHandler(fakeStore{}, []string{"https://example.com"})

	assert.True(t, h.originAllowed("https://example.com"))
	assert.False(t, h.originAllowed("https://evil.test"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	h := newTestHandler(fakeStore{}, []string{"https://example.com"})
	req := httptest.NewRequest(http.MethodOptions, "/generate-schedule", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestFetchHardRequests_StoreFailureDegradesToEmpty(t *testing.T) {
	h := newTestHandler(fakeStore{err: errors.New("connection refused")}, nil)
	in := roster.Input{Nurses: []roster.Nurse{{ID: "n1"}}}

	got := h.fetchHardRequests(context.Background(), in)

	assert.Nil(t, got)
}

func TestFetchHardRequests_SkipsLookupWhenNoNonGovernmentNurses(t *testing.T) {
	store := fakeStore{requests: []roster.HardRequest{{NurseID: "n1"}}}
	h := newTestHandler(store, nil)
	in := roster.Input{Nurses: []roster.Nurse{{ID: "n1", IsGovernmentOfficial: true}}}

	got := h.fetchHardRequests(context.Background(), in)

	assert.Nil(t, got)
}

func TestFetchHardRequests_ReturnsStoreResults(t *testing.T) {
	want := []roster.HardRequest{{NurseID: "n1"}}
	h := newTestHandler(fakeStore{requests: want}, nil)
	in := roster.Input{Nurses: []roster.Nurse{{ID: "n1"}}}

	got := h.fetchHardRequests(context.Background(), in)

	require.Equal(t, want, got)
}

func TestHandleGenerateError_MapsInvalidInputToBadRequest(t *testing.T) {
	h := newTestHandler(fakeStore{}, nil)
	rec := httptest.NewRecorder()

	h.handleGenerateError(rec, &roster.Error{Kind: roster.InvalidInput, Message: "bad"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateError_MapsOtherKindsToInternalError(t *testing.T) {
	h := newTestHandler(fakeStore{}, nil)
	rec := httptest.NewRecorder()

	h.handleGenerateError(rec, &roster.Error{Kind: roster.Infeasible, Message: "no solution"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
