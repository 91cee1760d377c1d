package display

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Table prints rows under headers. Nothing is printed for no rows.
func Table(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	data := pterm.TableData{headers}
	data = append(data, rows...)

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(Out, rendered)
	return nil
}

// Lines prints one value per line.
func Lines(values []string) {
	for _, v := range values {
		fmt.Fprintln(Out, v)
	}
}

// Success prints a success status line.
func Success(format string, args ...interface{}) {
	fmt.Fprintln(Out, pterm.Success.Sprintf(format, args...))
}

// Warning prints a warning status line.
func Warning(format string, args ...interface{}) {
	fmt.Fprintln(Out, pterm.Warning.Sprintf(format, args...))
}

// Info prints an informational status line.
func Info(format string, args ...interface{}) {
	fmt.Fprintln(Out, pterm.Info.Sprintf(format, args...))
}
