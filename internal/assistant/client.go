package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"
)

// Draft is an extracted event waiting for the user to confirm it.
type Draft struct {
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	Time       *string `json:"time"`
	Desc       *string `json:"desc"`
	CourseName *string `json:"courseName"`
	Category   *string `json:"category,omitempty"`
}

type Usage struct {
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetTime string `json:"resetTime"`
}

// QuotaError is returned when the server refuses a request for the day.
type QuotaError struct {
	Message   string
	Used      int
	Limit     int
	ResetTime string
	// RetryAfter is set when the upstream model, not the daily quota, is
	// throttling.
	RetryAfter int
}

func (e *QuotaError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("daily limit reached (%d/%d)", e.Used, e.Limit)
}

// APIError is any other non-2xx reply.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// Client talks to the extraction server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout, Transport: tr},
	}
}

type extractResponse struct {
	Events []Draft `json:"events"`
}

// ExtractText sends pasted text.
func (c *Client) ExtractText(ctx context.Context, text string) ([]Draft, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("text", text); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return c.extract(ctx, mw.FormDataContentType(), &body)
}

// ExtractFile uploads one document. PDFs are sent as application/pdf and
// everything else as plain text.
func (c *Client) ExtractFile(ctx context.Context, filename string, r io.Reader) ([]Draft, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", contentTypeFor(filename))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return c.extract(ctx, mw.FormDataContentType(), &body)
}

func (c *Client) extract(ctx context.Context, contentType string, body io.Reader) ([]Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/extract-events", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var out extractResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// Usage fetches today's quota standing.
func (c *Client) Usage(ctx context.Context) (Usage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/usage", nil)
	if err != nil {
		return Usage{}, err
	}
	var u Usage
	err = c.do(req, &u)
	return u, err
}

type errorBody struct {
	Error      string `json:"error"`
	Details    string `json:"details"`
	Used       int    `json:"used"`
	Limit      int    `json:"limit"`
	ResetTime  string `json:"resetTime"`
	RetryAfter int    `json:"retryAfter"`
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&eb)
	if eb.Error == "" {
		eb.Error = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &QuotaError{
			Message:    eb.Error,
			Used:       eb.Used,
			Limit:      eb.Limit,
			ResetTime:  eb.ResetTime,
			RetryAfter: eb.RetryAfter,
		}
	}
	return &APIError{Status: resp.StatusCode, Message: eb.Error, Details: eb.Details}
}

func contentTypeFor(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return "application/pdf"
	}
	if t := mime.TypeByExtension(filepath.Ext(filename)); strings.HasPrefix(t, "text/") {
		return t
	}
	return "text/plain; charset=utf-8"
}
