package codec

import (
	"bufio"
	"io"
	"strings"

	"github.com/joeydtaylor/switchboard/pkg/internal/types"
)

// NTriplesEncoder writes every triple of the batch as one N-Triples statement per line.
type NTriplesEncoder struct{}

func NewNTriplesEncoder() *NTriplesEncoder { return &NTriplesEncoder{} }

func (e *NTriplesEncoder) Encode(w io.Writer, batch []types.Payload) error {
	bw := bufio.NewWriter(w)
	for _, p := range batch {
		for _, t := range p.Triples {
			if _, err := bw.WriteString(FormatTriple(t)); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func (e *NTriplesEncoder) ContentType() string { return "application/n-triples" }
func (e *NTriplesEncoder) Extension() string   { return ".nt" }

// FormatTriple renders t as an N-Triples statement including the trailing " .". The same syntax
// is valid inside a SPARQL INSERT DATA block.
func FormatTriple(t types.Triple) string {
	var b strings.Builder
	b.WriteString(FormatTerm(t.Subject))
	b.WriteByte(' ')
	b.WriteString(FormatIRI(t.Predicate))
	b.WriteByte(' ')
	if t.Literal {
		b.WriteString(FormatLiteral(t.Object, t.Datatype, t.Lang))
	} else {
		b.WriteString(FormatTerm(t.Object))
	}
	b.WriteString(" .")
	return b.String()
}

// FormatTerm renders a subject or object node: blank nodes pass through, anything else is an IRI.
func FormatTerm(s string) string {
	if strings.HasPrefix(s, "_:") {
		return s
	}
	return FormatIRI(s)
}

func FormatIRI(iri string) string {
	return "<" + iriEscaper.Replace(iri) + ">"
}

// FormatLiteral renders a literal. A language tag wins over a datatype.
func FormatLiteral(value, datatype, lang string) string {
	out := `"` + literalEscaper.Replace(value) + `"`
	switch {
	case lang != "":
		return out + "@" + lang
	case datatype != "":
		return out + "^^" + FormatIRI(datatype)
	default:
		return out
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

var iriEscaper = strings.NewReplacer(
	">", "\\u003E",
	"<", "\\u003C",
	"\"", "\\u0022",
	" ", "\\u0020",
	"{", "\\u007B",
	"}", "\\u007D",
	"|", "\\u007C",
	"^", "\\u005E",
	"`", "\\u0060",
	"\\", "\\u005C",
)
