// Package publisher implements the target publisher component.
// The publisher builds a target-specific payload from the ledger and the
// enterprise identifiers for each external system, and posts it once.
// Per-target failure is captured into that target's result and never
// propagates to sibling targets.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbtn/compliance-audit/internal/auditlog"
	"github.com/vbtn/compliance-audit/internal/config"
	"github.com/vbtn/compliance-audit/internal/identity"
	"github.com/vbtn/compliance-audit/internal/ledger"
)

// requestTimeout is the fixed per-call timeout on outbound posts.
const requestTimeout = 30 * time.Second

// Outcome is the three-plus-one valued attempt outcome of one target.
type Outcome string

const (
	// OutcomeSkipped means the target had no URL or key configured and no request was sent.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeSuccess means an HTTP response with a success status was received.
	OutcomeSuccess Outcome = "success"
	// OutcomeHTTPFailure means an HTTP response with a non-success status was received.
	OutcomeHTTPFailure Outcome = "http_failure"
	// OutcomeTransportFailure means no HTTP response was received at all.
	OutcomeTransportFailure Outcome = "transport_failure"
)

// Result is the recorded outcome of one publish target.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Status  int     `json:"status,omitempty"`
	Body    string  `json:"body,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Run is the input shared by every target's payload builder.
type Run struct {
	TS         string
	Ledger     []ledger.Row
	Enterprise identity.Identifiers
}

// Target builds the payload for one external system.
type Target interface {
	Name() string
	Payload(run Run) any
}

type entry struct {
	target   Target
	endpoint config.Endpoint
}

// Publisher posts the run summary to every configured target, exactly once
// per target, sequentially, with no retries.
type Publisher struct {
	targets []entry
	client  *http.Client
	log     *auditlog.Log
}

// New returns a Publisher over the fixed target set, wired to the endpoints
// configured in cfg.
func New(log *auditlog.Log, cfg config.Config) *Publisher {
	return &Publisher{
		targets: []entry{
			{target: coupaTarget{}, endpoint: cfg.Coupa},
			{target: pieeTarget{}, endpoint: cfg.PIEE},
			{target: samTarget{}, endpoint: cfg.SAM},
		},
		client: &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

// PublishAll iterates the target set in order. Unconfigured targets are
// recorded as skipped; everything else gets one attempt. The returned map
// holds a Result for every target.
func (p *Publisher) PublishAll(ctx context.Context, run Run) map[string]Result {
	results := make(map[string]Result, len(p.targets))

	for _, e := range p.targets {
		name := e.target.Name()
		if !e.endpoint.Configured() {
			p.log.Printf("Skipping %s: credentials or URL not set", name)
			results[name] = Result{Outcome: OutcomeSkipped}
			continue
		}

		p.log.Printf("Posting to %s...", name)
		res := p.post(ctx, e.endpoint, e.target.Payload(run))
		results[name] = res

		if res.Outcome == OutcomeSuccess {
			p.log.Printf("%s response: status %d", name, res.Status)
		} else if res.Outcome == OutcomeHTTPFailure {
			p.log.Printf("%s failed: status %d body %q", name, res.Status, res.Body)
		} else {
			p.log.Printf("%s failed: %s", name, res.Error)
		}
	}

	return results
}

// post performs the single attempt against the endpoint and classifies the
// outcome. It never returns an error: failures become part of the Result.
func (p *Publisher) post(ctx context.Context, ep config.Endpoint, payload any) Result {
	data, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: OutcomeTransportFailure, Error: fmt.Sprintf("failed to marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(data))
	if err != nil {
		return Result{Outcome: OutcomeTransportFailure, Error: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ep.Key)

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeTransportFailure, Error: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("Failed to read response body", "error", err)
	}

	outcome := OutcomeSuccess
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = OutcomeHTTPFailure
	}

	return Result{Outcome: outcome, Status: resp.StatusCode, Body: string(body)}
}
