package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"isolation/experiments/metrics"
	"isolation/game"
	"isolation/searcher/agent"
	"net/http"
	"strings"
	"time"
)

// RemoteAgent asks an agent server for every move.
type RemoteAgent struct {
	url    string
	client *http.Client
	memory agent.Memory
	last   metrics.SearchMetric
}

func NewRemoteAgent(url string) *RemoteAgent {
	return &RemoteAgent{
		url:    strings.TrimSuffix(url, "/"),
		client: &http.Client{},
	}
}

// GetAction encodes the position in JSON and posts it to /findmove. The
// server is given four fifths of the remaining budget to leave room for the
// round trip.
func (r *RemoteAgent) GetAction(ctx context.Context, state game.State, sink agent.Sink) error {
	isolation, ok := state.(game.Isolation)
	if !ok {
		return fmt.Errorf("remote agents only play isolation, got %T", state)
	}

	payload := agent.FindMoveRequest{State: isolation, Memory: r.memory}
	if deadline, ok := ctx.Deadline(); ok {
		payload.TimeLimitMs = max(int(time.Until(deadline).Milliseconds()*4/5), 1)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/findmove", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach agent at %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("agent returned status %d: %s", resp.StatusCode, out)
	}

	var decoded agent.FindMoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode move: %w", err)
	}
	r.memory = decoded.Memory
	r.last = decoded.Metric
	sink.Put(decoded.Action)
	return nil
}

func (r *RemoteAgent) LastMetric() metrics.SearchMetric {
	return r.last
}

func (r *RemoteAgent) Context() agent.Memory {
	return r.memory
}

func (r *RemoteAgent) SetContext(memory agent.Memory) {
	r.memory = memory
}
