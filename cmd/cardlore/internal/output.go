package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatText is human-readable text output
	FormatText OutputFormat = "text"
	// FormatJSON is structured JSON output
	FormatJSON OutputFormat = "json"
	// FormatYAML is YAML output
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", NewCLIError(ExitInvalidInput,
			fmt.Sprintf("unknown output format %q (expected text, json or yaml)", s))
	}
}

// Formatter defines methods for formatting command output
type Formatter interface {
	// PrintSuccess prints a success message
	PrintSuccess(message string) error
	// PrintError prints an error message
	PrintError(message string) error
	// PrintTable prints a table with headers and rows
	PrintTable(headers []string, rows [][]string) error
	// PrintData prints an operation result
	PrintData(data any) error
}

// TextFormatter implements Formatter for human-readable text output. Data is
// rendered as YAML.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new TextFormatter writing to the given writer
func NewTextFormatter(w io.Writer) *TextFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &TextFormatter{writer: w}
}

// PrintSuccess prints a success message with a checkmark prefix
func (f *TextFormatter) PrintSuccess(message string) error {
	_, err := fmt.Fprintf(f.writer, "✓ %s\n", message)
	return err
}

// PrintError prints an error message with an X prefix
func (f *TextFormatter) PrintError(message string) error {
	_, err := fmt.Fprintf(f.writer, "✗ %s\n", message)
	return err
}

// PrintTable prints a table using text/tabwriter for aligned columns
func (f *TextFormatter) PrintTable(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	headerLine := make([]string, len(headers))
	separator := make([]string, len(headers))
	for i, h := range headers {
		headerLine[i] = strings.ToUpper(h)
		separator[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(headerLine, "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separator, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// PrintData prints data as YAML.
func (f *TextFormatter) PrintData(data any) error {
	return writeYAML(f.writer, data)
}

// JSONFormatter implements Formatter for structured JSON output
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSONFormatter writing to the given writer
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

// PrintSuccess prints a success message as JSON
func (f *JSONFormatter) PrintSuccess(message string) error {
	return f.PrintData(map[string]any{
		"status":  "success",
		"message": message,
	})
}

// PrintError prints an error message as JSON
func (f *JSONFormatter) PrintError(message string) error {
	return f.PrintData(map[string]any{
		"status":  "error",
		"message": message,
	})
}

// PrintTable prints a table as a JSON array of objects keyed by header
func (f *JSONFormatter) PrintTable(headers []string, rows [][]string) error {
	return f.PrintData(tableRecords(headers, rows))
}

// PrintData prints arbitrary data as indented JSON
func (f *JSONFormatter) PrintData(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// YAMLFormatter implements Formatter for YAML output
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAMLFormatter writing to the given writer
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &YAMLFormatter{writer: w}
}

// PrintSuccess prints a success message as YAML
func (f *YAMLFormatter) PrintSuccess(message string) error {
	return f.PrintData(map[string]any{"status": "success", "message": message})
}

// PrintError prints an error message as YAML
func (f *YAMLFormatter) PrintError(message string) error {
	return f.PrintData(map[string]any{"status": "error", "message": message})
}

// PrintTable prints a table as a YAML sequence of mappings
func (f *YAMLFormatter) PrintTable(headers []string, rows [][]string) error {
	return f.PrintData(tableRecords(headers, rows))
}

// PrintData prints data as YAML
func (f *YAMLFormatter) PrintData(data any) error {
	return writeYAML(f.writer, data)
}

// NewFormatter creates a new Formatter based on the output format
func NewFormatter(format OutputFormat, w io.Writer) Formatter {
	if w == nil {
		w = os.Stdout
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(w)
	case FormatYAML:
		return NewYAMLFormatter(w)
	default:
		return NewTextFormatter(w)
	}
}

func tableRecords(headers []string, rows [][]string) []map[string]string {
	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		data = append(data, record)
	}
	return data
}

// writeYAML renders data with its JSON field names. Values go through JSON
// first so struct tags and null optionals match the JSON output.
func writeYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlValue(generic)); err != nil {
		return err
	}
	return enc.Close()
}

// yamlValue replaces json.Number with int64 or float64 so YAML emits plain
// numbers instead of strings.
func yamlValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, item := range t {
			t[k] = yamlValue(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = yamlValue(item)
		}
		return t
	default:
		return v
	}
}
