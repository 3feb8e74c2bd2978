package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"calendar/internal/extract"
	"calendar/internal/http/respond"
	appLog "calendar/internal/log"
	"calendar/internal/metrics"
	"calendar/internal/quota"
)

// Extractor runs the model round trip for one block of text.
type Extractor interface {
	Extract(ctx context.Context, text string) (extract.Result, error)
}

type ExtractHandler struct {
	Svc   Extractor
	Quota quota.Store
	Now   func() time.Time
}

func (h *ExtractHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Extract counts the request against the caller's daily quota before doing
// anything else. A request that later fails is not refunded.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ip := ClientIP(r)
	now := h.now()

	usage, err := h.Quota.Acquire(r.Context(), ip, now)
	var exceeded *quota.ExceededError
	switch {
	case errors.As(err, &exceeded):
		metrics.ObserveExtract(metrics.OutcomeQuota, 0)
		respond.JSON(w, http.StatusTooManyRequests, map[string]any{
			"error":     fmt.Sprintf("Daily limit exceeded. You can only make %d requests per day.", exceeded.Limit),
			"used":      exceeded.Used,
			"limit":     exceeded.Limit,
			"resetTime": exceeded.ResetAt.Format(time.RFC3339),
		})
		return
	case err != nil:
		appLog.Error("quota acquire failed", err, "ip", ip)
		respond.Error(w, http.StatusInternalServerError, "server error")
		return
	}
	appLog.Info("extract request", "ip", ip, "used", usage.Used, "limit", usage.Limit)

	text, err := requestText(w, r)
	if err != nil {
		metrics.ObserveExtract(metrics.OutcomeBadInput, 0)
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := h.Svc.Extract(r.Context(), text)
	metrics.ObserveModel(time.Since(start))
	if err != nil {
		h.fail(w, usage, err)
		return
	}

	metrics.ObserveExtract(metrics.OutcomeOK, len(res.Events))
	if res.Events == nil {
		res.Events = []extract.Descriptor{}
	}
	respond.JSON(w, http.StatusOK, res)
}

// fail maps extraction errors to responses. A model rate limit reuses the
// quota shape with a retry hint.
func (h *ExtractHandler) fail(w http.ResponseWriter, usage quota.Usage, err error) {
	switch {
	case errors.Is(err, extract.ErrNoInput):
		metrics.ObserveExtract(metrics.OutcomeBadInput, 0)
		respond.Error(w, http.StatusBadRequest, "No text or supported file provided.")
	case errors.Is(err, extract.ErrModelRateLimited):
		metrics.ObserveExtract(metrics.OutcomeModelLimit, 0)
		respond.JSON(w, http.StatusTooManyRequests, map[string]any{
			"error":      "API rate limit exceeded. Please wait a moment and try again.",
			"used":       usage.Used,
			"limit":      usage.Limit,
			"resetTime":  usage.ResetAt.Format(time.RFC3339),
			"retryAfter": extract.RetryAfterSeconds,
		})
	case errors.Is(err, extract.ErrEmptyReply):
		metrics.ObserveExtract(metrics.OutcomeParseError, 0)
		respond.Error(w, http.StatusInternalServerError, "model returned an empty response")
	case errors.Is(err, extract.ErrBadReply):
		metrics.ObserveExtract(metrics.OutcomeParseError, 0)
		respond.Error(w, http.StatusInternalServerError, "Failed to parse AI response.")
	default:
		metrics.ObserveExtract(metrics.OutcomeModelError, 0)
		appLog.Error("extraction failed", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to extract events.",
			"details": err.Error(),
		})
	}
}

type extractReq struct {
	Text string `json:"text"`
}

// requestText reads the `text` field or the uploaded `file`; a file wins.
// JSON bodies with a text field are accepted too.
func requestText(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxUploadBytes+1<<20)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/json":
		var req extractReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", errors.New("bad json")
		}
		return strings.TrimSpace(req.Text), nil
	case "multipart/form-data", "application/x-www-form-urlencoded":
	default:
		return "", nil
	}

	if err := r.ParseMultipartForm(extract.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", fmt.Errorf("invalid form: %w", err)
	}
	text := strings.TrimSpace(r.FormValue("text"))

	f, fh, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return text, nil
	case err != nil:
		return "", fmt.Errorf("invalid file: %w", err)
	}
	defer f.Close()

	if fh.Size > extract.MaxUploadBytes {
		return "", errors.New("file too large")
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	doc, err := extract.DocumentText(fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc), nil
}

// ClientIP is the quota identity: the peer address with the port removed.
// It reflects forwarded headers only when RealIP is mounted.
func ClientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}
