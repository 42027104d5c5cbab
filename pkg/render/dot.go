package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// ExportDOT renders the graph in Graphviz dot syntax. Positions are
// left to the dot engine; status and class styling carries over.
func (d *Diagram) ExportDOT(name string) ([]byte, error) {
	if name == "" {
		name = "signals"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", dotQuote(name))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [fontname=\"Helvetica\", style=filled];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	for _, v := range d.Graph.Vertices {
		attrs := []string{
			fmt.Sprintf("fillcolor=%s", dotQuote(classFill(v.Class))),
		}
		if v.HasCategory() {
			attrs = append(attrs, fmt.Sprintf("xlabel=%s", dotQuote(v.Category)))
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(v.Name), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")

	for _, e := range d.Graph.Edges {
		attrs := []string{
			fmt.Sprintf("color=%s", dotQuote(statusColor(e.Status()))),
		}
		if desc := e.Attr(assembly.AttrDescription); desc != "" {
			attrs = append(attrs, fmt.Sprintf("label=%s", dotQuote(desc)))
		}
		if strings.EqualFold(strings.TrimSpace(e.Status()), assembly.StatusNotDeveloped) {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n",
			dotQuote(e.From), dotQuote(e.To), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func dotQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
