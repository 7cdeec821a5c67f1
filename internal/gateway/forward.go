package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/pkg/middleware/requestid"
)

// OpForward labels verbatim GraphQL relays.
const OpForward = "forward"

// Forward posts payload to the GraphQL endpoint unchanged and returns the upstream JSON
// body whatever its status. A transport failure or a body that is not JSON is an error.
func (c *Client) Forward(ctx context.Context, payload json.RawMessage) (body json.RawMessage, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	status := 0
	defer func() {
		duration := time.Since(start)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		if c.metrics != nil {
			c.metrics.ObserveGatewayCall("", OpForward, outcome, duration)
		}
		c.logger.Debug("gateway_forward", zap.Int("status", status), zap.Duration("latency", duration), zap.Error(err))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Op: OpForward, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestid.Propagate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: OpForward, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: OpForward, Status: status, Err: fmt.Errorf("read body: %w", err)}
	}
	if !json.Valid(raw) {
		return nil, &Error{Op: OpForward, Status: status, Err: fmt.Errorf("upstream body is not JSON")}
	}
	return json.RawMessage(raw), nil
}
