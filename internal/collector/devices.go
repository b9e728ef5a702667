package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/vbtn/compliance-audit/internal/config"
	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/fileutils"
)

// devicesTimeout is the fixed per-call timeout on the inventory fetch.
const devicesTimeout = 30 * time.Second

// deviceError is the structured error artifact persisted in place of the
// device list when the fetch fails. It keeps "no devices" and "fetch failed"
// distinguishable in the workspace.
type deviceError struct {
	Error string `json:"error"`
	Body  string `json:"body,omitempty"`
}

// DevicesCollector pulls the managed device inventory with a single
// authenticated GET.
type DevicesCollector struct {
	endpoint config.Endpoint
	client   *http.Client
}

// NewDevices returns a device-inventory collector for the endpoint.
func NewDevices(endpoint config.Endpoint) *DevicesCollector {
	return &DevicesCollector{
		endpoint: endpoint,
		client:   &http.Client{Timeout: devicesTimeout},
	}
}

// Name implements Collector.
func (c *DevicesCollector) Name() string { return SourceDevices }

// Collect fetches the device list and persists it to devices.json. A
// transport error, non-success status or malformed body persists an error
// object instead and is reported through Result.FetchError, not through the
// error return: the fetch outcome is data, not a run failure.
func (c *DevicesCollector) Collect(ctx context.Context, workspaceDir string, _ time.Time) (Result, error) {
	artifact := filepath.Join(workspaceDir, constants.DevicesFileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.endpoint.URL, "/")+"/devices", nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create devices request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.endpoint.Key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fail(artifact, deviceError{Error: err.Error()})
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return c.fail(artifact, deviceError{Error: fmt.Sprintf("failed to read response: %v", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.fail(artifact, deviceError{Error: fmt.Sprintf("status %d", resp.StatusCode), Body: buf.String()})
	}

	var devices []any
	if err := fileutils.ParseJSON(&buf, &devices); err != nil {
		return c.fail(artifact, deviceError{Error: fmt.Sprintf("malformed device list: %v", err)})
	}

	if err := fileutils.WriteJSON(artifact, devices); err != nil {
		return Result{}, fmt.Errorf("failed to write devices artifact: %v", err)
	}

	return Result{Count: len(devices)}, nil
}

// fail persists the error artifact and reports the failure as data.
func (c *DevicesCollector) fail(artifact string, derr deviceError) (Result, error) {
	if err := fileutils.WriteJSON(artifact, derr); err != nil {
		return Result{}, fmt.Errorf("failed to write devices error artifact: %v", err)
	}
	return Result{FetchError: derr.Error}, nil
}
