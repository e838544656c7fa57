package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/studytrack/internal/catalog"
	"github.com/pbaille/studytrack/internal/domain"
	"github.com/pbaille/studytrack/internal/store"
	"github.com/pbaille/studytrack/internal/tracker"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	ks := store.NewMemory()
	ctrl := tracker.NewController(ks, []catalog.Subject{
		{Name: "Math", Topics: []string{"Algebra", "Geometry"}},
		{Name: "World History", Topics: []string{"Rome", "Greece", "Egypt"}},
	}, nil)
	srv := httptest.NewServer(New(ctrl, "", nil).Handler())
	t.Cleanup(srv.Close)
	return srv, ks
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, "GET", srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestBoard(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/subjects", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[domain.BoardView](t, resp)

	require.Len(t, board.Subjects, 2)
	assert.Equal(t, "World History", board.Subjects[1].Name)
	assert.Equal(t, domain.Progress{Done: 0, Total: 5, Pct: 0}, board.Global)
}

func TestUpdateTopic(t *testing.T) {
	srv, ks := newTestServer(t)

	resp := do(t, "PATCH", srv.URL+"/subjects/Math/topics/Algebra",
		`{"reviewed":true,"studied":true,"date":"2026-10-19"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u := decode[domain.Update](t, resp)

	assert.Equal(t, domain.Progress{Done: 1, Total: 2, Pct: 50}, u.Subject.Progress)
	assert.Equal(t, domain.Progress{Done: 1, Total: 5, Pct: 20}, u.Global)
	assert.Equal(t, domain.TopicView{Name: "Algebra", Reviewed: true, Studied: true, Date: "2026-10-19", Complete: true}, u.Subject.Topics[0])

	v, _ := ks.Get("Math::Algebra::class")
	assert.Equal(t, "true", v)
}

func TestUpdateTopic_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name, path, body string
		status           int
	}{
		{"bad json", "/subjects/Math/topics/Algebra", `{`, http.StatusBadRequest},
		{"empty", "/subjects/Math/topics/Algebra", `{}`, http.StatusBadRequest},
		{"bad date", "/subjects/Math/topics/Algebra", `{"date":"tomorrow"}`, http.StatusBadRequest},
		{"unknown topic", "/subjects/Math/topics/Optics", `{"reviewed":true}`, http.StatusNotFound},
		{"unknown subject", "/subjects/Physics/topics/Optics", `{"reviewed":true}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, "PATCH", srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAddAndRemoveTopic(t *testing.T) {
	srv, ks := newTestServer(t)
	base := srv.URL + "/subjects/" + url.PathEscape("World History") + "/topics"

	resp := do(t, "POST", base, `{"name":" Persia "}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	u := decode[domain.Update](t, resp)
	assert.Equal(t, "Persia", u.Subject.Topics[3].Name)
	assert.Equal(t, 6, u.Global.Total)

	resp = do(t, "POST", base, `{"name":"Persia"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = do(t, "POST", base, `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "DELETE", base+"/Rome", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u = decode[domain.Update](t, resp)
	assert.Len(t, u.Subject.Topics, 3)

	snap, ok := ks.Get(tracker.ListKey("World History"))
	require.True(t, ok)
	assert.Equal(t, `["Greece","Egypt","Persia"]`, snap)

	resp = do(t, "DELETE", base+"/Rome", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSubjectAndReconcile(t *testing.T) {
	srv, ks := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/subjects/Math", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Math", decode[domain.SubjectView](t, resp).Name)

	ks.Set(tracker.ListKey("Math"), `["Geometry","Algebra","Calculus"]`)
	resp = do(t, "POST", srv.URL+"/subjects/Math/reconcile", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u := decode[domain.Update](t, resp)
	require.Len(t, u.Subject.Topics, 3)
	assert.Equal(t, "Calculus", u.Subject.Topics[2].Name)

	resp = do(t, "GET", srv.URL+"/subjects/Physics", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, "OPTIONS", srv.URL+"/subjects", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t)
	req, err := http.NewRequest("GET", srv.URL+"/health", nil)
	require.NoError(t, err)
	id := "6f1c6d0e-4a52-4c1e-9c55-0d8b8f2f4b11"
	req.Header.Set("X-Request-ID", id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get("X-Request-ID"))
}
