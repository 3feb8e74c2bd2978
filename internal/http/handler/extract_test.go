package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar/internal/extract"
	"calendar/internal/quota"
)

const okReply = "```json\n{\"events\":[{\"title\":\"Midterm\",\"courseName\":\"PSYC 101\",\"date\":\"2026-10-20\",\"time\":\"04:00 PM\",\"desc\":null}]}\n```"

var testNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

func newExtractHandler(t *testing.T, reply func(prompt string) (string, error)) (*ExtractHandler, *int32) {
	t.Helper()
	var calls int32
	svc := &extract.Service{
		Model: extract.ModelFunc(func(_ context.Context, prompt string) (string, error) {
			atomic.AddInt32(&calls, 1)
			return reply(prompt)
		}),
		Now: func() time.Time { return testNow },
	}
	return &ExtractHandler{
		Svc:   svc,
		Quota: quota.NewLimiter(3),
		Now:   func() time.Time { return testNow },
	}, &calls
}

func textRequest(t *testing.T, text string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", text))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract-events", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.7:5555"
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestExtractOK(t *testing.T) {
	h, _ := newExtractHandler(t, func(prompt string) (string, error) {
		assert.Contains(t, prompt, "midterm next Tuesday")
		return okReply, nil
	})

	rec := httptest.NewRecorder()
	h.Extract(rec, textRequest(t, "PSYC 101 midterm next Tuesday 4pm"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res extract.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Midterm", res.Events[0].Title)
	assert.Nil(t, res.Events[0].Desc)
}

func TestExtractFourthRequestRejected(t *testing.T) {
	h, calls := newExtractHandler(t, func(string) (string, error) { return `{"events":[]}`, nil })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.Extract(rec, textRequest(t, "anything"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.Extract(rec, textRequest(t, "anything"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 3, body["used"])
	assert.EqualValues(t, 3, body["limit"])
	assert.Equal(t, "2026-10-17T00:00:00Z", body["resetTime"])
	assert.Contains(t, body["error"], "3 requests per day")
	assert.EqualValues(t, 3, atomic.LoadInt32(calls), "rejected request never reaches the model")
}

func TestExtractFailuresStillCount(t *testing.T) {
	h, _ := newExtractHandler(t, func(string) (string, error) { return "not json at all", nil })

	rec := httptest.NewRecorder()
	h.Extract(rec, textRequest(t, "anything"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to parse AI response.", decode(t, rec)["error"])

	u, err := h.Quota.Peek(context.Background(), "192.0.2.7", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, u.Used)
}

func TestExtractErrors(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		reply  func(string) (string, error)
		status int
		errMsg string
	}{
		{"empty input", "   ", nil, http.StatusBadRequest, "No text or supported file provided."},
		{"empty reply", "x", func(string) (string, error) { return "```json\n```", nil }, http.StatusInternalServerError, "model returned an empty response"},
		{"model rate limit", "x", func(string) (string, error) {
			return "", fmt.Errorf("googleapi: %w", extract.ErrModelRateLimited)
		}, http.StatusTooManyRequests, "API rate limit exceeded. Please wait a moment and try again."},
		{"upstream", "x", func(string) (string, error) { return "", fmt.Errorf("boom") }, http.StatusInternalServerError, "Failed to extract events."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply := tc.reply
			if reply == nil {
				reply = func(string) (string, error) {
					t.Fatal("model must not be called")
					return "", nil
				}
			}
			h, _ := newExtractHandler(t, reply)
			rec := httptest.NewRecorder()
			h.Extract(rec, textRequest(t, tc.text))
			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tc.errMsg, body["error"])
			if tc.status == http.StatusTooManyRequests {
				assert.EqualValues(t, extract.RetryAfterSeconds, body["retryAfter"])
				assert.EqualValues(t, 1, body["used"])
			}
		})
	}
}

func TestExtractFileSupersedesText(t *testing.T) {
	h, _ := newExtractHandler(t, func(prompt string) (string, error) {
		assert.Contains(t, prompt, "from the file")
		assert.NotContains(t, prompt, "from the field")
		return `{"events":[]}`, nil
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "from the field"))
	fw, err := mw.CreateFormFile("file", "syllabus.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("essay due from the file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract-events", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Extract(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"events":[]}`, rec.Body.String())
}

func TestExtractJSONBody(t *testing.T) {
	h, _ := newExtractHandler(t, func(prompt string) (string, error) {
		assert.Contains(t, prompt, "quiz friday")
		return okReply, nil
	})
	req := httptest.NewRequest(http.MethodPost, "/api/extract-events", strings.NewReader(`{"text":"quiz friday"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Extract(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUsage(t *testing.T) {
	store := quota.NewLimiter(3)
	_, err := store.Acquire(context.Background(), "192.0.2.7", testNow)
	require.NoError(t, err)

	h := &UsageHandler{Quota: store, Now: func() time.Time { return testNow }}
	req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	req.RemoteAddr = "192.0.2.7:4000"
	rec := httptest.NewRecorder()
	h.Usage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"used":1,"limit":3,"remaining":2,"resetTime":"2026-10-17T00:00:00Z"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientIP(req))
	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}
