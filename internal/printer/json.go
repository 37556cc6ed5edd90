package printer

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/slok/runcap/internal/model"
)

// JSONPrinter prints run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// listItem represents a run in the list output (subset of fields).
type listItem struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Engine    string    `json:"engine"`
	ExitCode  *int      `json:"exit_code"`
	CreatedAt time.Time `json:"created_at"`
}

// runOutput represents the full run output.
type runOutput struct {
	ID         string                 `json:"id"`
	Command    []string               `json:"command"`
	Engine     string                 `json:"engine"`
	CreatedAt  time.Time              `json:"created_at"`
	DurationMS int64                  `json:"duration_ms"`
	Record     model.CompletionRecord `json:"record"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRunList prints runs in JSON format with a subset of fields.
func (j *JSONPrinter) PrintRunList(runs []model.Run) error {
	items := make([]listItem, len(runs))
	for i, r := range runs {
		items[i] = listItem{
			ID:        r.ID,
			Command:   strings.Join(r.Command, " "),
			Engine:    string(r.Engine),
			ExitCode:  r.Record.ExitCode,
			CreatedAt: r.CreatedAt.UTC(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRun prints a full run in JSON format.
func (j *JSONPrinter) PrintRun(r model.Run) error {
	output := runOutput{
		ID:         r.ID,
		Command:    r.Command,
		Engine:     string(r.Engine),
		CreatedAt:  r.CreatedAt.UTC(),
		DurationMS: r.Duration.Milliseconds(),
		Record:     r.Record,
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintRecord prints the completion record in JSON format. Keys keep the
// stdout, stderr, exit_code order and absent channels produce no key.
func (j *JSONPrinter) PrintRecord(record model.CompletionRecord) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
