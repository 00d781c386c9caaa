package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type record struct {
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status" yaml:"status"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSONL", FormatJSONL, false},
		{"ndjson", FormatJSONL, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("out/report.yaml"); err != nil || f != FormatYAML {
		t.Errorf("FormatFromPath(yaml) = %q, %v", f, err)
	}
	if _, err := FormatFromPath("report"); err == nil {
		t.Error("expected error for a path without extension")
	}
}

func TestNewReportWriter_Unsupported(t *testing.T) {
	_, err := NewReportWriter(&bytes.Buffer{}, Format("xml"))
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func writeAll(t *testing.T, format Format, records []record, opts ...Option) string {
	t.Helper()
	buf := &bytes.Buffer{}
	w, err := NewReportWriter(buf, format, opts...)
	if err != nil {
		t.Fatalf("NewReportWriter() error = %v", err)
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.String()
}

func TestJSONReport_AlwaysArray(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		records := make([]record, n)
		for i := range records {
			records[i] = record{Path: "a.html", Status: "ok"}
		}
		out := writeAll(t, FormatJSON, records)

		var got []record
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("n=%d: output is not a JSON array: %v\n%s", n, err, out)
		}
		if len(got) != n {
			t.Errorf("n=%d: decoded %d records", n, len(got))
		}
	}
}

func TestJSONReport_Compact(t *testing.T) {
	out := writeAll(t, FormatJSON, []record{{Path: "a", Status: "ok"}}, WithPretty(false))
	if out != `[{"path":"a","status":"ok"}]`+"\n" {
		t.Errorf("compact output = %q", out)
	}

	out = writeAll(t, FormatJSON, []record{{Path: "a", Status: "ok"}}, WithIndent("\t"))
	if !strings.Contains(out, "\t\t\"path\"") {
		t.Errorf("custom indent not applied: %q", out)
	}
}

func TestJSONLReport(t *testing.T) {
	out := writeAll(t, FormatJSONL, []record{{"a", "ok"}, {"b", "failed"}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	var r record
	if err := json.Unmarshal([]byte(lines[1]), &r); err != nil || r.Status != "failed" {
		t.Errorf("line 2 = %q (%v)", lines[1], err)
	}

	if out := writeAll(t, FormatJSONL, nil); out != "" {
		t.Errorf("empty JSONL report = %q", out)
	}
}

func TestYAMLReport(t *testing.T) {
	out := writeAll(t, FormatYAML, []record{{"a", "ok"}, {"b", "skipped"}})
	var got []record
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if len(got) != 2 || got[1].Status != "skipped" {
		t.Errorf("decoded %+v", got)
	}
}

func TestWriteFile_CreateReplaceSkip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "doc.md")

	action, err := WriteFile(path, []byte("one"), FilePolicy{Overwrite: true})
	if err != nil || action != ActionCreated {
		t.Fatalf("first WriteFile() = %q, %v", action, err)
	}

	action, err = WriteFile(path, []byte("two"), FilePolicy{Overwrite: false})
	if err != nil || action != ActionSkipped {
		t.Fatalf("WriteFile() without overwrite = %q, %v", action, err)
	}
	assertFile(t, path, "one")

	action, err = WriteFile(path, []byte("three"), FilePolicy{Overwrite: true})
	if err != nil || action != ActionReplaced {
		t.Fatalf("WriteFile() with overwrite = %q, %v", action, err)
	}
	assertFile(t, path, "three")

	if _, err := os.Stat(path + BackupSuffix); !os.IsNotExist(err) {
		t.Error("no backup expected without Backup")
	}
}

func TestWriteFile_Backup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if _, err := WriteFile(path, []byte("old"), FilePolicy{}); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteFile(path, []byte("new"), FilePolicy{Overwrite: true, Backup: true}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	assertFile(t, path, "new")
	assertFile(t, path+BackupSuffix, "old")
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	for range 3 {
		if _, err := WriteFile(path, []byte("x"), FilePolicy{Overwrite: true}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only doc.md, found %d entries", len(entries))
	}
}

func TestWriteFile_Directory(t *testing.T) {
	if _, err := WriteFile(t.TempDir(), []byte("x"), FilePolicy{Overwrite: true}); err == nil {
		t.Error("expected error when path is a directory")
	}
}

func TestWithFrontMatter(t *testing.T) {
	got, err := WithFrontMatter("# Title", FrontMatter{Title: "Title", Source: "a.html", Flavor: "github"})
	if err != nil {
		t.Fatalf("WithFrontMatter() error = %v", err)
	}
	want := "---\ntitle: Title\nsource: a.html\nflavor: github\n---\n\n# Title"
	if got != want {
		t.Errorf("WithFrontMatter() = %q, want %q", got, want)
	}

	got, err = WithFrontMatter("x", FrontMatter{Title: "a: b # c"})
	if err != nil {
		t.Fatal(err)
	}
	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSuffix(got, "---\n\nx"), "---\n")), &fm); err != nil || fm.Title != "a: b # c" {
		t.Errorf("title did not survive: %q (%v)", got, err)
	}

	got, err = WithFrontMatter("body", FrontMatter{})
	if err != nil || got != "body" {
		t.Errorf("empty front matter changed output: %q, %v", got, err)
	}
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(data) != want {
		t.Errorf("%s = %q, want %q", path, data, want)
	}
}
