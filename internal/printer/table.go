package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/runcap/internal/model"
)

const maxCommandWidth = 40

// TablePrinter prints run information in a human readable format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunList prints runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "ID\tCOMMAND\tENGINE\tEXIT\tCREATED")

	// Print rows
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			truncateCommand(r.Command),
			r.Engine,
			formatExitCode(r.Record.ExitCode),
			TimeAgo(r.CreatedAt),
		)
	}

	return nil
}

// PrintRun prints a single run with its full captured output.
func (t *TablePrinter) PrintRun(r model.Run) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", r.ID)
	fmt.Fprintf(t.writer, "Command:    %s\n", strings.Join(r.Command, " "))
	fmt.Fprintf(t.writer, "Engine:     %s\n", r.Engine)
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(r.CreatedAt))
	fmt.Fprintf(t.writer, "Duration:   %s\n", r.Duration.Round(time.Millisecond))

	if r.Record.ExitCode != nil {
		fmt.Fprintf(t.writer, "Exit code:  %d\n", *r.Record.ExitCode)
	}

	fmt.Fprintln(t.writer)
	return t.PrintRecord(r.Record)
}

// PrintRecord prints the captured channels of a finished command. Binary
// output is summarized instead of dumped raw.
func (t *TablePrinter) PrintRecord(record model.CompletionRecord) error {
	if record.Stdout != nil {
		fmt.Fprintf(t.writer, "Stdout:\n%s\n", renderValue(*record.Stdout))
	}

	if record.Stderr != nil {
		fmt.Fprintf(t.writer, "Stderr:\n%s\n", renderValue(*record.Stderr))
	}

	if record.ExitCode != nil {
		fmt.Fprintf(t.writer, "Exit code: %d\n", *record.ExitCode)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func renderValue(v model.CapturedValue) string {
	if v.Kind == model.ValueKindBinary {
		return fmt.Sprintf("<binary %s>", FormatBytes(int64(len(v.Bytes))))
	}
	return strings.TrimRight(v.Text, "\n")
}

func truncateCommand(command []string) string {
	line := strings.Join(command, " ")
	if len(line) > maxCommandWidth {
		return line[:maxCommandWidth-3] + "..."
	}
	return line
}

func formatExitCode(code *int) string {
	if code == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *code)
}
