// Package render writes frames as SVG documents and Graphviz DOT.
package render

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/schemalens/schemalens/internal/config"
	"github.com/schemalens/schemalens/internal/engine"
	"github.com/schemalens/schemalens/internal/graph"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SVG returns the frame as a width x height SVG document.
func SVG(f engine.Frame, colors config.ColorSettings, width, height float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(width), num(height), num(width), num(height))
	fmt.Fprintf(&b, `  <g class="viewport" transform="%s">`+"\n", f.Transform)

	b.WriteString(`    <g class="links">` + "\n")
	for _, l := range f.Links {
		stroke := colors.Link
		if l.Detail {
			stroke = colors.Attribute
		}
		fmt.Fprintf(&b, `      <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-opacity="%s"/>`+"\n",
			fixed(l.X1), fixed(l.Y1), fixed(l.X2), fixed(l.Y2), html.EscapeString(stroke), num(round3(l.Opacity())))
	}
	b.WriteString("    </g>\n")

	b.WriteString(`    <g class="nodes">` + "\n")
	for _, it := range f.Nodes {
		fill, stroke := colors.Table, colors.TableStroke
		if it.Kind == graph.KindDetail {
			fill, stroke = colors.Attribute, colors.AttributeStroke
		}
		class := it.Kind.String()
		if it.Ghost {
			class += " ghost"
		}
		if it.Selected {
			class += " selected"
		}
		fmt.Fprintf(&b, `      <g class="%s" data-id="%s" opacity="%s">`+"\n",
			class, html.EscapeString(it.ID), num(round3(it.Opacity())))
		fmt.Fprintf(&b, `        <circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s"/>`+"\n",
			fixed(it.X), fixed(it.Y), num(it.Radius), html.EscapeString(fill), html.EscapeString(stroke))
		if it.Kind == graph.KindDetail {
			fmt.Fprintf(&b, `        <text x="%s" y="%s" fill="%s" font-size="10">%s</text>`+"\n",
				fixed(it.X+it.Radius+4), fixed(it.Y+3), html.EscapeString(colors.Text), html.EscapeString(it.Label))
		} else {
			fmt.Fprintf(&b, `        <text x="%s" y="%s" fill="%s" font-size="12" text-anchor="middle">%s</text>`+"\n",
				fixed(it.X), fixed(it.Y+4), html.EscapeString(colors.Text), html.EscapeString(it.Label))
		}
		b.WriteString("      </g>\n")
	}
	b.WriteString("    </g>\n")

	b.WriteString("  </g>\n</svg>\n")
	return b.String()
}

func round3(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 3, 64), 64)
	return r
}

// WriteSVG writes SVG to w.
func WriteSVG(w io.Writer, f engine.Frame, colors config.ColorSettings, width, height float64) error {
	_, err := io.WriteString(w, SVG(f, colors, width, height))
	return err
}

// DOT returns the frame in Graphviz DOT format with fixed positions, for
// use with neato -n. Ghosts are omitted.
func DOT(f engine.Frame) string {
	var b strings.Builder
	b.WriteString("graph schemalens {\n")
	b.WriteString("  node [shape=circle];\n\n")

	for _, it := range f.Nodes {
		if it.Ghost {
			continue
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q, pos=\"%s,%s!\", class=%q];\n",
			it.ID, it.Label, fixed(it.X), fixed(-it.Y), it.Kind.String()))
	}

	b.WriteString("\n")
	for _, l := range f.Links {
		if l.Ghost {
			continue
		}
		b.WriteString(fmt.Sprintf("  %q -- %q;\n", l.Source, l.Target))
	}

	b.WriteString("}\n")
	return b.String()
}
