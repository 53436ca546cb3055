// Package persist implements the JSON workbook format described in
// spec §6: a single document `{"sheets": [{"name": S,
// "cell-contents": {LOC: TEXT, ...}}, ...]}`. This is deliberately the
// only persisted format the core knows about -- spec §1 scopes any
// richer file format (xlsx, xlsb, ...) out as an external collaborator
// -- so the package is a thin, single-purpose adapter over
// encoding/json rather than a general serialization framework.
package persist

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sheetcore/engine/internal/engine"
	"github.com/sheetcore/engine/internal/telemetry"
)

// ErrorKind classifies why a document failed to load, distinct from
// both value.Error (in-cell error values) and engine.InputError
// (boundary-contract violations on a live workbook edit) -- a load
// failure happens before there is a workbook to edit.
type ErrorKind uint8

const (
	// MissingKey means the top-level "sheets" key was absent.
	MissingKey ErrorKind = iota + 1
	// TypeMismatch means a key was present but held the wrong JSON
	// value type (e.g. "sheets" was not an array, or a cell's value
	// was not a string).
	TypeMismatch
	// Malformed means the input was not valid JSON at all.
	Malformed
)

// LoadError reports a document load failure.
type LoadError struct {
	Kind    ErrorKind
	Message string
}

func (e *LoadError) Error() string { return e.Message }

func newLoadError(kind ErrorKind, format string, args ...any) *LoadError {
	return &LoadError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// sheetDocument mirrors one entry of the wire "sheets" array;
// cell-contents is decoded manually (see Load) so a non-string cell
// value produces a TypeMismatch LoadError rather than a silent zero
// value.
type sheetDocument struct {
	Name         string          `json:"name"`
	CellContents json.RawMessage `json:"cell-contents"`
}

// Load reads a JSON workbook document from r and replays it into a
// fresh engine.Workbook: one NewSheet per document sheet (in document
// order) followed by one SetCellContents per entry in its
// "cell-contents" map. Cell contents are the text the user originally
// typed, matching spec §6's "stored as the text the user set, not the
// evaluated value" -- replaying SetCellContents reparses and
// re-evaluates everything, which is exactly the round-trip behavior
// spec §8's property 5 requires.
func Load(r io.Reader) (*engine.Workbook, error) {
	return LoadWithLogger(r, telemetry.Discard())
}

// LoadWithLogger is Load but routes the replayed edits through log
// instead of a discarding logger, for callers (e.g. cmd/sheetctl)
// that want the reloaded workbook's own edit trail.
func LoadWithLogger(r io.Reader, log telemetry.Logger) (*engine.Workbook, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, newLoadError(Malformed, "persist: read: %v", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, newLoadError(Malformed, "persist: invalid JSON: %v", err)
	}
	sheetsRaw, ok := probe["sheets"]
	if !ok {
		return nil, newLoadError(MissingKey, `persist: missing top-level key "sheets"`)
	}

	var sheetMsgs []json.RawMessage
	if err := json.Unmarshal(sheetsRaw, &sheetMsgs); err != nil {
		return nil, newLoadError(TypeMismatch, `persist: "sheets" must be an array: %v`, err)
	}

	wb := engine.NewWorkbookWithLogger(log)
	for i, msg := range sheetMsgs {
		var sd sheetDocument
		if err := json.Unmarshal(msg, &sd); err != nil {
			return nil, newLoadError(TypeMismatch, "persist: sheets[%d]: %v", i, err)
		}
		if sd.Name == "" {
			return nil, newLoadError(TypeMismatch, "persist: sheets[%d]: missing or empty \"name\"", i)
		}
		if _, _, err := wb.NewSheet(sd.Name); err != nil {
			return nil, newLoadError(TypeMismatch, "persist: sheets[%d] (%q): %v", i, sd.Name, err)
		}
		if sd.CellContents == nil {
			continue
		}
		var cells map[string]string
		if err := json.Unmarshal(sd.CellContents, &cells); err != nil {
			return nil, newLoadError(TypeMismatch, `persist: sheets[%d] (%q): "cell-contents" must map locations to strings: %v`, i, sd.Name, err)
		}
		for loc, text := range cells {
			if err := wb.SetCellContents(sd.Name, loc, text); err != nil {
				return nil, newLoadError(TypeMismatch, "persist: sheets[%d] (%q): cell %q: %v", i, sd.Name, loc, err)
			}
		}
	}
	return wb, nil
}

// Save writes wb's current contents to w in the spec §6 JSON shape,
// one object per sheet in display order, cell contents as the raw
// text last set (never the evaluated value).
func Save(wb *engine.Workbook, w io.Writer) error {
	names := wb.SheetNames()
	sheets := make([]map[string]any, 0, len(names))
	for _, name := range names {
		contents, err := wb.SheetCellContents(name)
		if err != nil {
			return fmt.Errorf("persist: save sheet %q: %w", name, err)
		}
		sheets = append(sheets, map[string]any{
			"name":          name,
			"cell-contents": contents,
		})
	}
	doc := map[string]any{"sheets": sheets}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("persist: save: %w", err)
	}
	return nil
}
