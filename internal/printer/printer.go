package printer

import "github.com/slok/runcap/internal/model"

// Printer knows how to print run information in different formats.
type Printer interface {
	PrintRun(r model.Run) error
	PrintRunList(runs []model.Run) error
	PrintRecord(record model.CompletionRecord) error
	PrintMessage(msg string) error
}
