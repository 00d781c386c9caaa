package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// jsonWriter buffers records and writes them as one array on Close, so
// the file is valid JSON even for a single record.
type jsonWriter struct {
	w       io.Writer
	pretty  bool
	indent  string
	records []any
}

func (w *jsonWriter) Write(record any) error {
	w.records = append(w.records, record)
	return nil
}

func (w *jsonWriter) Close() error {
	records := w.records
	if records == nil {
		records = []any{}
	}

	var data []byte
	var err error
	if w.pretty {
		data, err = json.MarshalIndent(records, "", w.indent)
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.w.Write(data)
	return err
}

// jsonlWriter writes one record per line as it arrives.
type jsonlWriter struct {
	w   io.Writer
	buf *bufio.Writer
}

func (w *jsonlWriter) Write(record any) error {
	if w.buf == nil {
		w.buf = bufio.NewWriter(w.w)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := w.buf.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *jsonlWriter) Close() error {
	if w.buf == nil {
		return nil
	}
	return w.buf.Flush()
}
