package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/core"
)

type echoTurner struct {
	lastSession string
	lastPatient string
}

func (e *echoTurner) Turn(_ context.Context, sessionID, patientID, message string) string {
	e.lastSession = sessionID
	e.lastPatient = patientID
	return "you said: " + message
}

type memTranscripts struct {
	messages map[string][]core.Message
}

func (m *memTranscripts) AddMessage(_ context.Context, sessionID string, msg core.Message) error {
	if m.messages == nil {
		m.messages = map[string][]core.Message{}
	}
	m.messages[sessionID] = append(m.messages[sessionID], msg)
	return nil
}

func (m *memTranscripts) GetMessages(_ context.Context, sessionID string, limit int) ([]core.Message, error) {
	msgs := m.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

type memHistories struct {
	records []core.HistoryRecord
}

func (m *memHistories) GetHistoriesByPatient(_ context.Context, patientID string, _ int) ([]core.HistoryRecord, error) {
	var out []core.HistoryRecord
	for _, rec := range m.records {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *echoTurner) {
	t.Helper()
	turner := &echoTurner{}
	cfg := &config.AppConfig{HTTPAddr: ":0", TranscriptWindowSize: 10}
	transcripts := &memTranscripts{messages: map[string][]core.Message{
		"s1": {
			{Role: core.RoleUser, Content: "I have a cough"},
			{Role: core.RoleAssistant, Content: "How long have you had it?"},
		},
	}}
	histories := &memHistories{records: []core.HistoryRecord{
		{ID: "h1", PatientID: "p1", SessionID: "s1", Source: "model"},
	}}
	return NewServer(context.Background(), cfg, turner, transcripts, histories), turner
}

func TestHandleTurnJSON(t *testing.T) {
	srv, turner := newTestServer(t)

	body := `{"session_id":"s1","patient_id":"p1","message":"I have a cough"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/turns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "you said: I have a cough", resp.Reply)
	assert.Equal(t, "p1", turner.lastPatient)
}

func TestHandleTurnGeneratesSessionID(t *testing.T) {
	srv, turner := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/turns", strings.NewReader(`{"message":"hello"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	// Without an explicit patient the session id doubles as one.
	assert.Equal(t, resp.SessionID, turner.lastPatient)
}

func TestHandleTurnSSE(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/turns", strings.NewReader(`{"session_id":"s1","message":"hi"}`))
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"session_id":"s1","reply":"you said: hi"}`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"), "body %q", body)
}

func TestHandleTurnValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message":`},
		{"empty message", `{"session_id":"s1","message":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/turns", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleTranscript(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/transcripts/s1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		SessionID string         `json:"session_id"`
		Messages  []core.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, core.RoleUser, resp.Messages[0].Role)
}

func TestHandleHistories(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/patients/p1/histories", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		PatientID string               `json:"patient_id"`
		Histories []core.HistoryRecord `json:"histories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp.PatientID)
	require.Len(t, resp.Histories, 1)
	assert.Equal(t, "s1", resp.Histories[0].SessionID)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
