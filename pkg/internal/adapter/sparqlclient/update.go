package sparqlclient

import (
	"strings"

	"github.com/joeydtaylor/switchboard/pkg/internal/codec"
	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// BuildUpdate renders one SPARQL Update request that replaces every subject in payloads. An empty
// graph targets the default graph.
func BuildUpdate(graph string, payloads []types.Payload) string {
	var b strings.Builder

	seen := make(map[string]struct{})
	for _, p := range payloads {
		for _, t := range p.Triples {
			if _, ok := seen[t.Subject]; ok {
				continue
			}
			seen[t.Subject] = struct{}{}
			// blank nodes in a DELETE WHERE pattern act as variables
			if strings.HasPrefix(t.Subject, "_:") {
				continue
			}
			b.WriteString("DELETE WHERE { ")
			openGraph(&b, graph)
			b.WriteString(codec.FormatIRI(t.Subject))
			b.WriteString(" ?p ?o ")
			closeGraph(&b, graph)
			b.WriteString("};\n")
		}
	}

	b.WriteString("INSERT DATA { ")
	openGraph(&b, graph)
	b.WriteString("\n")
	for _, p := range payloads {
		for _, t := range p.Triples {
			b.WriteString(codec.FormatTriple(t))
			b.WriteString("\n")
		}
	}
	closeGraph(&b, graph)
	b.WriteString("}")
	return b.String()
}

func openGraph(b *strings.Builder, graph string) {
	if graph == "" {
		return
	}
	b.WriteString("GRAPH ")
	b.WriteString(codec.FormatIRI(graph))
	b.WriteString(" { ")
}

func closeGraph(b *strings.Builder, graph string) {
	if graph == "" {
		return
	}
	b.WriteString("} ")
}
