// Package smsclient implements the MessageLister collaborator against the
// Twilio REST API.
package smsclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vbtn/compliance-audit/internal/collector"
	"github.com/vbtn/compliance-audit/internal/config"
	"github.com/vbtn/compliance-audit/internal/fileutils"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

const requestTimeout = 30 * time.Second

// Twilio lists messages through the provider's REST API.
type Twilio struct {
	sid    string
	token  string
	base   string
	client *http.Client
}

type options struct {
	// Private members exported for tests.
	baseURL string
}

// Options represents an optional function to override Twilio default values.
type Options func(*options)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Options {
	return func(o *options) {
		o.baseURL = u
	}
}

// New returns a Twilio client for the configured account.
func New(cfg config.SMS, args ...Options) *Twilio {
	opts := options{baseURL: defaultBaseURL}
	for _, opt := range args {
		opt(&opts)
	}

	return &Twilio{
		sid:    cfg.SID,
		token:  cfg.Token,
		base:   opts.baseURL,
		client: &http.Client{Timeout: requestTimeout},
	}
}

type messagePage struct {
	Messages []struct {
		SID      string `json:"sid"`
		From     string `json:"from"`
		To       string `json:"to"`
		Body     string `json:"body"`
		DateSent string `json:"date_sent"`
	} `json:"messages"`
}

// ListSince implements collector.MessageLister for one number.
func (t *Twilio) ListSince(ctx context.Context, to string, since time.Time) ([]collector.Message, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.base, t.sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	q := url.Values{}
	q.Set("To", to)
	q.Set("DateSent>", since.Format(time.DateOnly))
	q.Set("PageSize", "1000")
	req.URL.RawQuery = q.Encode()
	req.SetBasicAuth(t.sid, t.token)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var page messagePage
	if err := fileutils.ParseJSON(resp.Body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse message list: %v", err)
	}

	msgs := make([]collector.Message, 0, len(page.Messages))
	for _, m := range page.Messages {
		msgs = append(msgs, collector.Message{
			SID:      m.SID,
			From:     m.From,
			To:       m.To,
			Body:     m.Body,
			DateSent: m.DateSent,
		})
	}
	return msgs, nil
}
