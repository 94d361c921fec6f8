package response

// LocationPoint is one position in a file: 1-based line and column plus
// the byte offset the position was derived from.
type LocationPoint struct {
	Col    int `json:"col"`
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// Location describes where an instance sits within a file.
type Location struct {
	Path  string        `json:"path"`
	Start LocationPoint `json:"start"`
	End   LocationPoint `json:"end"`
}

// Error is a message container for scanner- and detector-level errors in
// complete responses.
type Error struct {
	Message string `json:"message"`
}

// CompleteInstance is a MinimalInstance with its offsets resolved to
// positions and the literal source text between them.
type CompleteInstance struct {
	Location Location `json:"location"`
	Lines    []string `json:"lines"`
	Fixes    []string `json:"fixes"`
	Extra    Extra    `json:"extra"`
}

// CompleteFinding groups expanded instances and counts the impacted
// files by base name.
type CompleteFinding struct {
	Instances []CompleteInstance `json:"instances"`
	Impacted  map[string]int     `json:"impacted"`
}

// CompleteDetectorResponse is an expanded detector result.
type CompleteDetectorResponse struct {
	Findings []CompleteFinding `json:"findings"`
	Errors   []Error           `json:"errors"`
}

// CompleteScannerResponse is a scanner's output with every offset pair
// resolved to line/column positions.
type CompleteScannerResponse struct {
	Errors    []Error                             `json:"errors"`
	Scanned   []string                            `json:"scanned"`
	Responses map[string]CompleteDetectorResponse `json:"responses"`
}
