// Package client provides an HTTP client for the pawstay REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/dailylog"
	"github.com/evcraddock/pawstay/internal/dashboard"
	"github.com/evcraddock/pawstay/internal/lifecycle"
	"github.com/evcraddock/pawstay/internal/occupancy"
	"github.com/evcraddock/pawstay/internal/report"
	"github.com/evcraddock/pawstay/internal/review"
)

// Client is an HTTP client for the pawstay API. Staff operations are sent
// with the actor name in the X-Actor header.
type Client struct {
	baseURL    string
	actor      string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, actor string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		actor:      actor,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a failure reported by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

// Submit books a new stay.
func (c *Client) Submit(ctx context.Context, in appointment.Input) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := c.post(ctx, "/api/appointments", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Detail returns an appointment with its stays and daily logs.
func (c *Client) Detail(ctx context.Context, id uuid.UUID) (*lifecycle.Detail, error) {
	var d lifecycle.Detail
	if err := c.get(ctx, "/api/appointments/"+id.String(), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Approve accepts a pending appointment.
func (c *Client) Approve(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := c.post(ctx, "/api/appointments/"+id.String()+"/approve", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Reject declines or cancels an appointment.
func (c *Client) Reject(ctx context.Context, id uuid.UUID, note string) (*appointment.Appointment, error) {
	body := map[string]string{"note": note}
	var a appointment.Appointment
	if err := c.post(ctx, "/api/appointments/"+id.String()+"/reject", body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CheckIn records the pet's arrival.
func (c *Client) CheckIn(ctx context.Context, id uuid.UUID) (*occupancy.Occupancy, error) {
	var o occupancy.Occupancy
	if err := c.post(ctx, "/api/appointments/"+id.String()+"/check-in", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CheckOut closes an occupancy. A zero at means now.
func (c *Client) CheckOut(ctx context.Context, occupancyID uuid.UUID, at time.Time) (*occupancy.Occupancy, error) {
	body := map[string]string{}
	if !at.IsZero() {
		body["at"] = at.Format(time.RFC3339)
	}
	var o occupancy.Occupancy
	if err := c.post(ctx, "/api/occupancies/"+occupancyID.String()+"/check-out", body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// AddDailyLog appends a care entry for a checked-in pet.
func (c *Client) AddDailyLog(ctx context.Context, id uuid.UUID, in dailylog.Input) (*dailylog.Entry, error) {
	var e dailylog.Entry
	if err := c.post(ctx, "/api/appointments/"+id.String()+"/logs", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Logs returns an appointment's daily log.
func (c *Client) Logs(ctx context.Context, id uuid.UUID) ([]*dailylog.Entry, error) {
	var logs []*dailylog.Entry
	if err := c.get(ctx, "/api/appointments/"+id.String()+"/logs", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Pending returns appointments awaiting a decision.
func (c *Client) Pending(ctx context.Context) ([]dashboard.Summary, error) {
	var rows []dashboard.Summary
	if err := c.get(ctx, "/api/dashboard/pending", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Upcoming returns approved stays from date onward. An empty date means
// the server's today.
func (c *Client) Upcoming(ctx context.Context, date string) ([]dashboard.Summary, error) {
	path := "/api/dashboard/upcoming"
	if date != "" {
		path += "?" + url.Values{"date": {date}}.Encode()
	}
	var rows []dashboard.Summary
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Occupants returns pets currently on site.
func (c *Client) Occupants(ctx context.Context) ([]dashboard.Occupant, error) {
	var rows []dashboard.Occupant
	if err := c.get(ctx, "/api/dashboard/occupants", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// History returns closed appointments, optionally only one status.
func (c *Client) History(ctx context.Context, status string) ([]dashboard.HistoryRow, error) {
	path := "/api/dashboard/history"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	var rows []dashboard.HistoryRow
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Reviews returns reviews, optionally filtered by sentiment.
func (c *Client) Reviews(ctx context.Context, sentiment string) ([]dashboard.ReviewRow, error) {
	path := "/api/reviews"
	if sentiment != "" {
		path += "?" + url.Values{"sentiment": {sentiment}}.Encode()
	}
	var rows []dashboard.ReviewRow
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// AddReview submits owner feedback.
func (c *Client) AddReview(ctx context.Context, in review.Input) (*review.Review, error) {
	var rv review.Review
	if err := c.post(ctx, "/api/reviews", in, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return c.doDelete(ctx, "/api/reviews/"+id.String())
}

// Export downloads a rendered review report.
func (c *Client) Export(ctx context.Context, sentiment, format string) (*report.Artifact, error) {
	q := url.Values{}
	if sentiment != "" {
		q.Set("sentiment", sentiment)
	}
	if format != "" {
		q.Set("format", format)
	}
	path := "/api/reviews/export"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	art := &report.Artifact{ContentType: resp.Header.Get("Content-Type"), Body: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		art.Filename = params["filename"]
	}
	return art, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// doDelete performs a DELETE request.
func (c *Client) doDelete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.actor != "" {
		req.Header.Set("X-Actor", c.actor)
	}
	return req, nil
}

// do executes an HTTP request and decodes a JSON response into result.
func (c *Client) do(req *http.Request, result any) error {
	_, body, err := c.send(req)
	if err != nil {
		return err
	}
	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// send executes req and returns the response body, turning error statuses
// into *APIError.
func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	if cerr := resp.Body.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("closing response body: %w", cerr)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: "server error: " + http.StatusText(resp.StatusCode)}
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Code
		}
		return nil, nil, apiErr
	}

	return resp, body, nil
}
