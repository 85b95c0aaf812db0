package ticketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"happylink/internal/errs"
)

// DestinationLayout is the time format the ticket service expects
const DestinationLayout = "02.01.2006 15:04:05"

const maxResponseBody = 64 << 10

var unsafeChars = regexp.MustCompile(`[<>'";]`)

// Sanitize strips characters the ticket service does not accept in comments
func Sanitize(text string) string {
	return unsafeChars.ReplaceAllString(text, "")
}

// Request is the body of a ticket-creation call
type Request struct {
	AgreementID     int64  `json:"agreement_id"`
	ReasonID        int    `json:"reason_id"`
	Phone           string `json:"phone"`
	DestinationTime string `json:"destination_time"`
	Comment         string `json:"comment"`
}

// NewRequest builds a request due at now with the customer's text as comment
func NewRequest(agreementID int64, reasonID int, phone, text string, now time.Time) Request {
	return Request{
		AgreementID:     agreementID,
		ReasonID:        reasonID,
		Phone:           phone,
		DestinationTime: now.Format(DestinationLayout),
		Comment:         "\n" + Sanitize(text),
	}
}

// Client posts tickets to the billing service
type Client struct {
	url  string
	key  string
	http *http.Client
}

func NewClient(url, key string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		key:  key,
		http: &http.Client{Timeout: timeout},
	}
}

// CreateTicket posts req and returns the response body. Any non-2xx status
// is a transport error.
func (c *Client) CreateTicket(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode ticket: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", errs.Transport("create ticket", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Auth-Key", c.key)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errs.Transport("create ticket", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", errs.Transport("read ticket response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(data), errs.Transport("create ticket", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data)))
	}
	return string(data), nil
}
