package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeydtaylor/switchboard/pkg/builder"
)

type recordingIndexer struct {
	ids    []string
	reject string
}

func (r *recordingIndexer) Index(_ context.Context, id string) error {
	if id == r.reject {
		return builder.ErrPipelineClosed
	}
	r.ids = append(r.ids, id)
	return nil
}

func (r *recordingIndexer) Flush(context.Context) builder.FlushReport { return builder.FlushReport{} }
func (r *recordingIndexer) Close() error                              { return nil }
func (r *recordingIndexer) Stats() builder.Stats                      { return builder.Stats{} }

func TestSubmitIDsFromStdin(t *testing.T) {
	idx := &recordingIndexer{}
	n, err := submitIDs(context.Background(), idx, nil, strings.NewReader("a\n\n# comment\n  b  \nc\n"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n != 3 || strings.Join(idx.ids, ",") != "a,b,c" {
		t.Fatalf("unexpected ids %v (%d)", idx.ids, n)
	}
}

func TestSubmitIDsArgsTakePrecedence(t *testing.T) {
	idx := &recordingIndexer{}
	if _, err := submitIDs(context.Background(), idx, []string{"x"}, strings.NewReader("ignored\n")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(idx.ids) != 1 || idx.ids[0] != "x" {
		t.Fatalf("expected only argument ids, got %v", idx.ids)
	}
}

func TestSubmitIDsStopsOnRejection(t *testing.T) {
	idx := &recordingIndexer{reject: "b"}
	n, err := submitIDs(context.Background(), idx, []string{"a", "b", "c"}, nil)
	if !errors.Is(err, builder.ErrPipelineClosed) {
		t.Fatalf("expected closed pipeline error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 accepted id, got %d", n)
	}
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mapping := filepath.Join(dir, "mapping.yaml")
	if err := os.WriteFile(mapping, []byte("baseIRI: https://data.example.org/id\ntypes:\n  Person:\n    index: people\n"), 0o600); err != nil {
		t.Fatalf("write mapping: %v", err)
	}
	cfg := filepath.Join(dir, "switchboard.yaml")
	body := `
log:
  level: error
loader:
  dsn: postgres://indexer@localhost/app?sslmode=require
mapping:
  file: ` + mapping + `
sinks:
  - name: archive
    kind: file
    file:
      directory: ` + filepath.Join(dir, "out") + `
`
	if err := os.WriteFile(cfg, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfg
}

func TestValidateCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs([]string{"--config", writeTestConfig(t), "validate", "--skip-loader"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("validate: %v\n%s", err, stdout.String())
	}
	out := stdout.String()
	for _, want := range []string{"mapping", "loader", "sink archive"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected failure:\n%s", out)
	}
}

func TestIndexCommandWithNoIDsPrintsStats(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(strings.NewReader("\n"), &stdout, &stderr)
	cmd.SetArgs([]string{"--config", writeTestConfig(t), "index"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("index: %v", err)
	}
	var stats builder.Stats
	if err := json.Unmarshal(stdout.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, stdout.String())
	}
	if stats.TasksSubmitted != 0 {
		t.Fatalf("expected no submissions, got %+v", stats)
	}
	if _, ok := stats.Sinks["archive"]; !ok {
		t.Fatalf("expected archive sink in stats: %+v", stats)
	}
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "validate"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
