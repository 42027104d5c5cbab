package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/softloud/sig-vis/pkg/assembly"
)

const vertexRadius = 18.0

// Edge stroke colors keyed by delivery status.
var statusColors = map[string]string{
	assembly.StatusOperational:  "#2b8a3e",
	assembly.StatusBuggy:        "#c92a2a",
	assembly.StatusNotDeveloped: "#868e96",
}

const defaultEdgeColor = "#495057"

// Vertex fills keyed by class.
var classFills = map[string]string{
	assembly.ClassHumans:   "#ffd43b",
	assembly.ClassNotHuman: "#74c0fc",
}

const defaultVertexFill = "#dee2e6"

func statusColor(status string) string {
	if color, ok := statusColors[strings.ToLower(strings.TrimSpace(status))]; ok {
		return color
	}
	return defaultEdgeColor
}

func markerID(status string) string {
	key := strings.ToLower(strings.TrimSpace(status))
	if _, ok := statusColors[key]; !ok {
		return "arrow-other"
	}
	return "arrow-" + strings.ReplaceAll(key, " ", "-")
}

func classFill(class string) string {
	if fill, ok := classFills[class]; ok {
		return fill
	}
	return defaultVertexFill
}

// ExportSVG renders the diagram as a standalone SVG document. Edges
// are colored by delivery status, vertices by class, with the node
// category printed under each name.
func (d *Diagram) ExportSVG(title string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="Helvetica, Arial, sans-serif">`+"\n",
		d.Width, d.Height, d.Width, d.Height)

	buf.WriteString("<defs>\n")
	for status, color := range statusColors {
		writeArrowMarker(&buf, markerID(status), color)
	}
	writeArrowMarker(&buf, "arrow-other", defaultEdgeColor)
	buf.WriteString("</defs>\n")

	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")

	if title != "" {
		fmt.Fprintf(&buf, `<text x="%.1f" y="26" text-anchor="middle" font-size="18" fill="#212529">%s</text>`+"\n",
			d.Width/2, html.EscapeString(title))
	}

	buf.WriteString(`<g stroke-width="2" fill="none">` + "\n")
	for _, edge := range d.Graph.Edges {
		d.writeEdge(&buf, edge)
	}
	buf.WriteString("</g>\n")

	buf.WriteString("<g>\n")
	for _, v := range d.Graph.Vertices {
		pos, ok := d.Positions[v.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, `<circle cx="%.1f" cy="%.1f" r="%.0f" fill="%s" stroke="#343a40" stroke-width="1.5"/>`+"\n",
			pos.X, pos.Y, vertexRadius, classFill(v.Class))
		fmt.Fprintf(&buf, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12" fill="#212529">%s</text>`+"\n",
			pos.X, pos.Y+vertexRadius+14, html.EscapeString(v.Name))
		if v.HasCategory() {
			fmt.Fprintf(&buf, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="10" fill="#868e96">%s</text>`+"\n",
				pos.X, pos.Y+vertexRadius+26, html.EscapeString(v.Category))
		}
	}
	buf.WriteString("</g>\n")

	d.writeLegend(&buf)

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func writeArrowMarker(buf *bytes.Buffer, id, color string) {
	fmt.Fprintf(buf, `<marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">`+"\n", id)
	fmt.Fprintf(buf, `<path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>`+"\n", color)
	buf.WriteString("</marker>\n")
}

func (d *Diagram) writeEdge(buf *bytes.Buffer, edge assembly.Edge) {
	fromPos, okFrom := d.Positions[edge.From]
	toPos, okTo := d.Positions[edge.To]
	if !okFrom || !okTo {
		return
	}

	status := edge.Status()
	color := statusColor(status)
	marker := markerID(status)
	dash := ""
	if strings.EqualFold(strings.TrimSpace(status), assembly.StatusNotDeveloped) {
		dash = ` stroke-dasharray="6 4"`
	}

	tooltip := edge.Attr(assembly.AttrDescription)
	if responsible := edge.Attr(assembly.AttrResponsible); responsible != "" {
		if tooltip != "" {
			tooltip = fmt.Sprintf("%s (%s)", tooltip, responsible)
		} else {
			tooltip = responsible
		}
	}

	buf.WriteString("<g>\n")
	if tooltip != "" {
		fmt.Fprintf(buf, "<title>%s</title>\n", html.EscapeString(tooltip))
	}

	if edge.From == edge.To {
		// Self loop drawn as an arc above the vertex
		fmt.Fprintf(buf, `<path d="M %.1f %.1f A 14 14 0 1 1 %.1f %.1f" stroke="%s"%s marker-end="url(#%s)"/>`+"\n",
			fromPos.X-10, fromPos.Y-vertexRadius+4, fromPos.X+10, fromPos.Y-vertexRadius+4,
			color, dash, marker)
	} else {
		dx := toPos.X - fromPos.X
		dy := toPos.Y - fromPos.Y
		dist := math.Hypot(dx, dy)
		if dist < 0.01 {
			dist = 0.01
		}
		ux, uy := dx/dist, dy/dist

		x1 := fromPos.X + ux*vertexRadius
		y1 := fromPos.Y + uy*vertexRadius
		x2 := toPos.X - ux*(vertexRadius+3)
		y2 := toPos.Y - uy*(vertexRadius+3)

		fmt.Fprintf(buf, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"%s marker-end="url(#%s)"/>`+"\n",
			x1, y1, x2, y2, color, dash, marker)
	}
	buf.WriteString("</g>\n")
}

func (d *Diagram) writeLegend(buf *bytes.Buffer) {
	buf.WriteString(`<g font-size="11" fill="#495057">` + "\n")

	y := 20.0
	statuses := []string{
		assembly.StatusOperational,
		assembly.StatusBuggy,
		assembly.StatusNotDeveloped,
	}
	for _, status := range statuses {
		fmt.Fprintf(buf, `<line x1="14" y1="%.1f" x2="38" y2="%.1f" stroke="%s" stroke-width="2"/>`+"\n",
			y-4, y-4, statusColors[status])
		fmt.Fprintf(buf, `<text x="44" y="%.1f">%s</text>`+"\n", y, status)
		y += 16
	}

	for _, class := range []string{assembly.ClassHumans, assembly.ClassNotHuman} {
		fmt.Fprintf(buf, `<circle cx="26" cy="%.1f" r="6" fill="%s" stroke="#343a40"/>`+"\n",
			y-4, classFills[class])
		fmt.Fprintf(buf, `<text x="44" y="%.1f">%s</text>`+"\n", y, class)
		y += 16
	}

	buf.WriteString("</g>\n")
}
