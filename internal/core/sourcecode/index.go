// Package sourcecode provides cached, offset-addressed access to source
// files. Each file is read once; a prefix-sum table of line starting
// offsets makes offset-to-position lookups logarithmic.
package sourcecode

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Position is a 1-based line/column pair.
type Position struct {
	Line int
	Col  int
}

// fileIndex holds one file's contents and its line-start offset table.
type fileIndex struct {
	text        string
	lineOffsets []int
}

// Manager caches file contents and offset indexes for the duration of a
// scan. It is not safe for concurrent use; scans run sequentially.
type Manager struct {
	files map[string]*fileIndex
}

// NewManager creates an empty source code manager.
func NewManager() *Manager {
	return &Manager{files: make(map[string]*fileIndex)}
}

// Load reads the file at path into the cache and precomputes its line
// starting offsets. Loading an already cached file is a no-op.
func (m *Manager) Load(path string) error {
	if _, ok := m.files[path]; ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	text := string(data)

	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	m.files[path] = &fileIndex{text: text, lineOffsets: offsets}
	return nil
}

// OffsetToPosition converts a byte offset into a 1-based line/column
// position. An offset equal to the file length resolves to the position
// one past the last character.
func (m *Manager) OffsetToPosition(path string, offset int) (Position, error) {
	idx, err := m.index(path)
	if err != nil {
		return Position{}, err
	}
	if offset < 0 || offset > len(idx.text) {
		return Position{}, fmt.Errorf("offset %d out of range for %s (len %d)", offset, path, len(idx.text))
	}

	// Greatest line start <= offset.
	line := sort.Search(len(idx.lineOffsets), func(i int) bool {
		return idx.lineOffsets[i] > offset
	}) - 1

	return Position{
		Line: line + 1,
		Col:  offset - idx.lineOffsets[line] + 1,
	}, nil
}

// TextRange returns the literal source text between start (inclusive)
// and end (exclusive), split into lines.
func (m *Manager) TextRange(path string, start, end int) ([]string, error) {
	idx, err := m.index(path)
	if err != nil {
		return nil, err
	}
	if start < 0 || end > len(idx.text) || start > end {
		return nil, fmt.Errorf("range [%d, %d) out of bounds for %s (len %d)", start, end, path, len(idx.text))
	}
	slice := idx.text[start:end]
	if slice == "" {
		return []string{}, nil
	}
	lines := strings.Split(strings.TrimSuffix(slice, "\n"), "\n")
	return lines, nil
}

func (m *Manager) index(path string) (*fileIndex, error) {
	if idx, ok := m.files[path]; ok {
		return idx, nil
	}
	if err := m.Load(path); err != nil {
		return nil, err
	}
	return m.files[path], nil
}
