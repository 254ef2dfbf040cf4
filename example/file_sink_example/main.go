package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joeydtaylor/switchboard/pkg/builder"
)

const mappingYAML = `
baseIRI: https://data.example.org/id
required: [Person]
types:
  Person:
    index: people
    class: https://schema.org/Person
    fields:
      name: https://schema.org/name
      email: https://schema.org/email
    relations:
      worksFor: https://schema.org/worksFor
`

// memLoader serves generated people instead of reading Postgres.
type memLoader struct{}

func (memLoader) LoadForIndexing(_ context.Context, id string) (*builder.RecordSnapshot, error) {
	return &builder.RecordSnapshot{
		ID:      id,
		Type:    "Person",
		Version: 1,
		Fields: map[string][]string{
			"name":  {"Person " + id},
			"email": {id + "@example.org"},
		},
		Relations: []builder.Relation{{Predicate: "worksFor", TargetID: "acme", TargetType: "Organization"}},
		LoadedAt:  time.Now(),
	}, nil
}

func main() {
	ctx := context.Background()
	logger := builder.NewLogger(builder.LoggerWithLevel("info"))

	m, err := builder.ParseMapping([]byte(mappingYAML))
	if err != nil {
		panic(err)
	}

	out := filepath.Join(os.TempDir(), "switchboard-example")
	docs, err := builder.NewFileClient(
		builder.FileWithDirectory(filepath.Join(out, "documents")),
		builder.FileWithFormat(builder.FormatNDJSON),
		builder.FileWithCompression(builder.CompressGzip),
		builder.FileWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}
	graph, err := builder.NewFileClient(
		builder.FileWithDirectory(filepath.Join(out, "graph")),
		builder.FileWithFormat(builder.FormatNTriples),
		builder.FileWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	cfg := builder.DefaultPipelineConfig()
	cfg.BatchSize = 25

	p, err := builder.NewPipeline(ctx, cfg, memLoader{}, builder.NewMapper(m),
		[]builder.NamedSink{
			builder.Sink("documents", docs),
			builder.Sink("graph", graph),
		},
		builder.PipelineWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	for i := 0; i < 100; i++ {
		if err := p.Index(ctx, fmt.Sprintf("p-%03d", i)); err != nil {
			panic(err)
		}
	}

	report := p.Flush(ctx)
	fmt.Printf("Flush complete=%v in %v\n", report.Complete(), report.Elapsed)

	if err := p.Close(); err != nil {
		fmt.Println("Close error:", err)
	}

	stats := p.Stats()
	fmt.Printf("Submitted: %d, completed: %d, failed: %d\n", stats.TasksSubmitted, stats.TasksCompleted, stats.TasksFailed)
	for name, s := range stats.Sinks {
		fmt.Printf("  %-10s written=%d batches=%d\n", name, s.Written, s.Batches)
	}
	fmt.Printf("Files: %d document batches, %d graph batches under %s\n", docs.Files(), graph.Files(), out)
}
