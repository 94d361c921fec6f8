// Package response defines the scanner wire model: minimal responses
// addressed by byte offsets, and complete responses expanded to
// line/column positions with literal source text.
package response

import "encoding/json"

// Extra carries instance metadata: known metavariable bindings plus any
// other fields the scanner emitted. On the wire, metavars is a dedicated
// key and everything else sits beside it at the top level.
type Extra struct {
	Metavars map[string]string
	Other    map[string]any
}

// MarshalJSON flattens Other back beside the metavars key.
func (e Extra) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Other)+1)
	for k, v := range e.Other {
		out[k] = v
	}
	if e.Metavars == nil {
		out["metavars"] = map[string]string{}
	} else {
		out["metavars"] = e.Metavars
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the metavars key out and keeps the remaining
// fields in Other.
func (e *Extra) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Metavars = map[string]string{}
	e.Other = map[string]any{}
	for k, v := range raw {
		if k == "metavars" {
			if err := json.Unmarshal(v, &e.Metavars); err != nil {
				return err
			}
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		e.Other[k] = val
	}
	return nil
}

// MinimalInstance is a single issue occurrence addressed purely by byte
// offsets into a file relative to the project root.
type MinimalInstance struct {
	Path        string   `json:"path"`
	OffsetStart int      `json:"offset_start"`
	OffsetEnd   int      `json:"offset_end"`
	Fixes       []string `json:"fixes"`
	Extra       Extra    `json:"extra"`
}

// MinimalFinding groups the instances of one reported issue.
type MinimalFinding struct {
	Instances []MinimalInstance `json:"instances"`
}

// MinimalDetectorResponse is the result of one detector's execution.
type MinimalDetectorResponse struct {
	Findings []MinimalFinding `json:"findings"`
	Errors   []string         `json:"errors"`
}

// MinimalScannerResponse is a scanner's raw output for one scan run.
type MinimalScannerResponse struct {
	Errors    []string                           `json:"errors"`
	Scanned   []string                           `json:"scanned"`
	Responses map[string]MinimalDetectorResponse `json:"responses"`
}
