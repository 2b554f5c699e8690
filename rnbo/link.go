package rnbo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/peragwin/vuzicscene/control"
)

// Request types sent to the runner.
const (
	RequestCreate       = "create"
	RequestDependencies = "dependencies"
)

// Request asks the runner to act on the device.
type Request struct {
	Type         string          `json:"type"`
	Patcher      json.RawMessage `json:"patcher,omitempty"`
	Runtime      string          `json:"runtime,omitempty"`
	Dependencies []Dependency    `json:"dependencies,omitempty"`
}

// Link carries requests to a runner and events back.
type Link interface {
	// Request sends req and waits for the runner to accept it.
	Request(ctx context.Context, req *Request) error
	Messages() <-chan control.Message
	Params() <-chan control.ParamChange
	Close() error
}

// event is the JSON envelope of everything the runner sends.
type event struct {
	Type    string  `json:"type"`
	Tag     string  `json:"tag"`
	Payload float64 `json:"payload"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Error   string  `json:"error"`
}

// Event types received from the runner.
const (
	eventMessage   = "message"
	eventParameter = "parameter"
	eventReady     = "ready"
	eventError     = "error"
)

func decodeEvent(data []byte) (*event, error) {
	ev := &event{}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	return ev, nil
}

// parseScalar reads a payload that is either a bare number or a JSON
// array whose first element is the number.
func parseScalar(data []byte) (float64, error) {
	s := strings.TrimSpace(string(data))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	var list []float64
	if err := json.Unmarshal(data, &list); err != nil || len(list) == 0 {
		return 0, fmt.Errorf("bad scalar payload %q", s)
	}
	return list[0], nil
}
