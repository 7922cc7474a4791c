package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/schemalens/schemalens/internal/engine"
	"github.com/schemalens/schemalens/internal/graph"
	"github.com/schemalens/schemalens/internal/schema"
	"github.com/schemalens/schemalens/internal/ui"
	"github.com/schemalens/schemalens/internal/viewport"
	"github.com/spf13/cobra"
)

// sceneOptions are the interactions replayed before output.
type sceneOptions struct {
	expand   []string
	collapse []string
	search   string
	selectID string
	hover    string
	frames   int
	seed     uint64
	fit      bool
}

func (o *sceneOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&o.expand, "expand", nil, "Expand a table (repeatable, applied in order)")
	f.StringArrayVar(&o.collapse, "collapse", nil, "Collapse a table after expanding (repeatable)")
	f.StringVar(&o.search, "search", "", "Dim nodes whose label does not contain this term")
	f.StringVar(&o.selectID, "select", "", "Select a node and show its details")
	f.StringVar(&o.hover, "hover", "", "Emphasize a node and its neighbors")
	f.IntVar(&o.frames, "frames", 3000, "Maximum frames to run per settle")
	f.Uint64Var(&o.seed, "seed", 1, "Solver seed")
	f.BoolVar(&o.fit, "fit", true, "Fit the view to the content once settled")

	for _, name := range []string{"expand", "collapse", "select", "hover"} {
		_ = cmd.RegisterFlagCompletionFunc(name, tableCompletionFunc)
	}
}

// replay builds a session and applies the interactions, settling after
// each one.
func replay(path string, o sceneOptions) (*engine.Session, int, error) {
	s, err := openSession(path, engine.WithSeed(o.seed), engine.WithFitOnLoad(o.fit))
	if err != nil {
		return nil, 0, err
	}

	frames := s.Settle(o.frames)
	for _, id := range o.expand {
		if !s.Expand(id) {
			logger.Warn("nothing to expand", "id", id)
		}
		frames += s.Settle(o.frames)
	}
	for _, id := range o.collapse {
		if !s.Collapse(id) {
			logger.Warn("nothing to collapse", "id", id)
		}
		frames += s.Settle(o.frames)
	}
	if o.fit && (len(o.expand) > 0 || len(o.collapse) > 0) {
		s.FitToContent()
		frames += s.Settle(o.frames)
	}

	if o.selectID != "" && !s.Click(o.selectID) {
		return nil, frames, fmt.Errorf("no node %q", o.selectID)
	}
	if o.hover != "" && !s.Hover(o.hover) {
		return nil, frames, fmt.Errorf("no node %q", o.hover)
	}
	s.Search(o.search)
	s.Step(engine.FrameInterval)
	return s, frames + 1, nil
}

func layoutCmd() *cobra.Command {
	var (
		opts   sceneOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "layout <schema.json>",
		Short: "Run the layout headless and print node positions",
		Long: "Run the layout headless and print node positions.\n\n" +
			"Use - to read the schema from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, frames, err := replay(args[0], opts)
			if err != nil {
				return err
			}
			return writeLayout(cmd.OutOrStdout(), s, frames, asJSON)
		},
	}

	opts.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type nodeRow struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Kind    string  `json:"kind"`
	Parent  string  `json:"parent,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Opacity float64 `json:"opacity"`
}

type nodeDetails struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Parent   string   `json:"parent,omitempty"`
	Expanded bool     `json:"expanded"`
	Columns  []string `json:"columns,omitempty"`
}

type layoutOutput struct {
	Summary   schema.Summary     `json:"summary"`
	Status    string             `json:"status"`
	Frames    int                `json:"frames"`
	Transform viewport.Transform `json:"transform"`
	Zoom      int                `json:"zoom_percent"`
	Active    []string           `json:"active"`
	Nodes     []nodeRow          `json:"nodes"`
	Links     []graph.LinkState  `json:"links"`
	Selected  *nodeDetails       `json:"selected,omitempty"`
}

func buildLayoutOutput(s *engine.Session, frames int) layoutOutput {
	f := s.Frame()
	out := layoutOutput{
		Summary:   s.Summary(),
		Status:    s.Status(),
		Frames:    frames,
		Transform: f.Transform,
		Zoom:      s.Viewport().Percent(),
		Active:    s.Active(),
		Nodes:     make([]nodeRow, 0, len(f.Nodes)),
		Links:     s.Model().Snapshot().Links,
	}
	for _, it := range f.Nodes {
		if it.Ghost {
			continue
		}
		out.Nodes = append(out.Nodes, nodeRow{
			ID:      it.ID,
			Label:   it.Label,
			Kind:    it.Kind.String(),
			Parent:  it.ParentID,
			X:       round2(it.X),
			Y:       round2(it.Y),
			Opacity: round2(it.Opacity()),
		})
	}
	if n, ok := s.Selected(); ok {
		out.Selected = &nodeDetails{
			ID:       n.ID,
			Label:    n.Label,
			Kind:     n.Kind.String(),
			Parent:   n.ParentID,
			Expanded: n.Expanded,
			Columns:  n.Details,
		}
	}
	return out
}

func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

func writeLayout(w io.Writer, s *engine.Session, frames int, asJSON bool) error {
	out := buildLayoutOutput(s, frames)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rows := make([][]string, 0, len(out.Nodes))
	for _, n := range out.Nodes {
		rows = append(rows, []string{
			n.ID,
			n.Kind,
			strconv.FormatFloat(n.X, 'f', 1, 64),
			strconv.FormatFloat(n.Y, 'f', 1, 64),
			strconv.FormatFloat(n.Opacity, 'f', 2, 64),
		})
	}
	ui.TableTo(w, []string{"ID", "KIND", "X", "Y", "OPACITY"}, rows)
	fmt.Fprintln(w)
	ui.Field(w, "Links", len(out.Links))
	ui.Field(w, "Expanded", len(out.Active))
	ui.Field(w, "Zoom", fmt.Sprintf("%d%%", out.Zoom))
	ui.Field(w, "Frames", out.Frames)

	if sel := out.Selected; sel != nil {
		fmt.Fprintln(w)
		ui.Field(w, "Selected", sel.Label)
		ui.Field(w, "Kind", sel.Kind)
		if sel.Parent != "" {
			ui.Field(w, "Table", sel.Parent)
		}
		for _, c := range sel.Columns {
			fmt.Fprintf(w, "    %s %s\n", ui.Subtle.Sprint("·"), c)
		}
	}
	return nil
}
