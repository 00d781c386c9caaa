package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// yamlWriter buffers records and writes them as one sequence on Close.
type yamlWriter struct {
	w       io.Writer
	records []any
}

func (w *yamlWriter) Write(record any) error {
	w.records = append(w.records, record)
	return nil
}

func (w *yamlWriter) Close() error {
	records := w.records
	if records == nil {
		records = []any{}
	}
	enc := yaml.NewEncoder(w.w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
