package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Job states reported by the background-removal service.
const (
	JobQueued   = "queued"
	JobRunning  = "running"
	JobFinished = "finished"
	JobFailed   = "failed"
)

const (
	maxStatusBytes   = 1 << 20
	maxDownloadBytes = 512 << 20
)

// JobOptions are the processing parameters sent with every submission.
type JobOptions struct {
	FeatherRadius float64
	AlphaBoost    float64
}

// JobStatus is the body of GET /api/jobs/{id}.
type JobStatus struct {
	Status       string  `json:"status"`
	Stage        string  `json:"stage,omitempty"`
	Progress     float64 `json:"progress"`
	Error        string  `json:"error,omitempty"`
	DownloadPath string  `json:"download_path,omitempty"`
	Filename     string  `json:"filename,omitempty"`
}

func (s JobStatus) Terminal() bool {
	return s.Status == JobFinished || s.Status == JobFailed
}

// ClampedProgress is Progress bounded to 0..100.
func (s JobStatus) ClampedProgress() float64 {
	switch {
	case s.Progress < 0:
		return 0
	case s.Progress > 100:
		return 100
	}
	return s.Progress
}

var (
	ErrJobFailed       = errors.New("job failed")
	ErrMissingDownload = errors.New("result is missing download path")
)

// APIError is a non-2xx answer from the job service. Its message is the
// service's detail when one was sent, a generic one otherwise.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "failed to " + e.Op
}

// JobClient talks to the remote background-removal job service.
type JobClient struct {
	baseURL string
	client  *http.Client
}

func NewJobClient(baseURL string, client *http.Client) *JobClient {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &JobClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *JobClient) BaseURL() string { return c.baseURL }

type submitResponse struct {
	JobID string `json:"job_id"`
}

// SubmitSingle uploads one image and returns the job id.
func (c *JobClient) SubmitSingle(ctx context.Context, path string, opts JobOptions) (string, error) {
	return c.submit(ctx, "/api/jobs/remove-bg", "file", []string{path}, opts, "submit job")
}

// SubmitBatch uploads several images as one job producing a zip archive.
func (c *JobClient) SubmitBatch(ctx context.Context, paths []string, opts JobOptions) (string, error) {
	return c.submit(ctx, "/api/jobs/remove-bg-batch", "files", paths, opts, "submit batch job")
}

func (c *JobClient) submit(ctx context.Context, endpoint, field string, paths []string, opts JobOptions, op string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("%s: no files", op)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range paths {
		if err := writeFilePart(mw, field, p); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}
	fields := map[string]float64{
		"feather_radius": opts.FeatherRadius,
		"alpha_boost":    opts.AlphaBoost,
	}
	for _, name := range []string{"feather_radius", "alpha_boost"} {
		if err := mw.WriteField(name, strconv.FormatFloat(fields[name], 'f', -1, 64)); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out submitResponse
	if err := c.doJSON(req, op, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("%s: response has no job id", op)
	}
	logger().Info("job submitted", "job", out.JobID, "files", len(paths))
	return out.JobID, nil
}

// writeFilePart streams one file into the form with an image content type,
// which the service checks.
func writeFilePart(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(path)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

// Status fetches the current state of a job.
func (c *JobClient) Status(ctx context.Context, jobID string) (JobStatus, error) {
	const op = "get job status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return JobStatus{}, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	var status JobStatus
	if err := c.doJSON(req, op, &status); err != nil {
		return JobStatus{}, err
	}
	return status, nil
}

// CheckTerminal turns a terminal status into the error the caller should
// surface, or nil when the result can be downloaded.
func CheckTerminal(status JobStatus) error {
	switch status.Status {
	case JobFailed:
		if status.Error != "" {
			return fmt.Errorf("%w: %s", ErrJobFailed, status.Error)
		}
		return ErrJobFailed
	case JobFinished:
		if status.DownloadPath == "" {
			return ErrMissingDownload
		}
	}
	return nil
}

// Poll repeats Status every interval until the job finishes or fails.
// onUpdate, when set, sees every status including the terminal one.
func (c *JobClient) Poll(ctx context.Context, jobID string, interval time.Duration, onUpdate func(JobStatus)) (JobStatus, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.Status(ctx, jobID)
		if err != nil {
			return JobStatus{}, err
		}
		if onUpdate != nil {
			onUpdate(status)
		}
		if status.Terminal() {
			return status, CheckTerminal(status)
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Download fetches the finished job's result: an image, or a zip archive
// for batch jobs.
func (c *JobClient) Download(ctx context.Context, jobID string) ([]byte, error) {
	const op = "download result"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/jobs/"+url.PathEscape(jobID)+"/download", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: http: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp, op)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	logger().Info("job downloaded", "job", jobID, "bytes", len(data))
	return data, nil
}

func (c *JobClient) doJSON(req *http.Request, op string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp, op)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: json decode: %w", op, err)
	}
	return nil
}

// apiError reads an optional {"detail": "..."} body.
func apiError(resp *http.Response, op string) error {
	e := &APIError{Op: op, StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxStatusBytes))
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if s, ok := payload.Detail.(string); ok {
			e.Detail = s
		}
	}
	logger().Warn("job service error", "op", op, "status", resp.StatusCode, "detail", e.Detail)
	return e
}
