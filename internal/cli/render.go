package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/stellium/internal/aspect"
	"github.com/Veraticus/stellium/internal/engine"
	"github.com/Veraticus/stellium/internal/model"
	"github.com/Veraticus/stellium/internal/pattern"
)

// NoLinksMessage is printed for a pattern without instances.
const NoLinksMessage = "No structural links found for this pattern."

// Renderer writes engine output for terminals.
type Renderer struct {
	w     io.Writer
	table aspect.Table
}

// NewRenderer creates a renderer. The table supplies the aspect glyphs.
func NewRenderer(w io.Writer, table aspect.Table) *Renderer {
	return &Renderer{w: w, table: table}
}

// SeriesRow is one computed snapshot of a series.
type SeriesRow struct {
	Label  string
	Result engine.Result
}

// Icon returns the glyph for an aspect type.
func (r *Renderer) Icon(t model.AspectType) string {
	if def, ok := r.table.Lookup(t); ok && def.Icon != "" {
		return def.Icon
	}
	return StarIcon
}

// FormatOrb renders an orb rounded to two decimals.
func FormatOrb(orb float64) string {
	return fmt.Sprintf("%.2f°", orb)
}

// FormatAspect renders one aspect on a single line.
func (r *Renderer) FormatAspect(a model.AspectInstance) string {
	return fmt.Sprintf("%s %s %s %s (orb %s)", a.BaseKey, AspectStyle(a.Type).Render(r.Icon(a.Type)), a.Type, a.OtherKey, FormatOrb(a.Orb))
}

// Describe summarizes a pattern instance's structure on one line.
func (r *Renderer) Describe(inst model.PatternInstance) string {
	s := inst.Structure
	opp, tri, sxt, sqr := r.Icon(model.Opposition), r.Icon(model.Trine), r.Icon(model.Sextile), r.Icon(model.Square)

	switch inst.Shape {
	case model.ShapeCluster:
		return "Cluster: " + strings.Join(s.Cluster, " "+r.Icon(model.Conjunction)+" ")
	case model.ShapeFocal:
		return fmt.Sprintf("Focal %s %s both ends of %s", s.Focal, sqr, joinPair(s.Base, opp))
	case model.ShapeTriangle:
		return "Triangle: " + strings.Join(s.Triple, " "+tri+" ")
	case model.ShapeAxes:
		parts := make([]string, len(s.Axes))
		for i, axis := range s.Axes {
			parts[i] = axis[0] + " " + opp + " " + axis[1]
		}
		return "Axes: " + strings.Join(parts, " | ")
	case model.ShapeTriples:
		parts := make([]string, len(s.Triples))
		for i, triple := range s.Triples {
			parts[i] = "[" + strings.Join(triple[:], " "+tri+" ") + "]"
		}
		return "Trines: " + strings.Join(parts, " "+sxt+" ")
	case model.ShapeRectangle:
		parts := make([]string, len(s.Oppositions))
		for i, pair := range s.Oppositions {
			parts[i] = pair[0] + " " + opp + " " + pair[1]
		}
		return "Oppositions: " + strings.Join(parts, " | ")
	case model.ShapeChain:
		text := "Chain: " + strings.Join(s.Chain, " "+sxt+" ")
		if len(s.Chain) > 1 {
			text += fmt.Sprintf(" (%s %s %s)", s.Chain[0], opp, s.Chain[len(s.Chain)-1])
		}
		return text
	case model.ShapeKite:
		return fmt.Sprintf("Triangle: %s, tail %s", strings.Join(s.Triangle, " "+tri+" "), joinPair(s.Opposition, opp))
	}
	return strings.Join(inst.Points, ", ")
}

func joinPair(pair []string, glyph string) string {
	return strings.Join(pair, " "+glyph+" ")
}

// Aspects prints an aspect table. top limits the rows shown; 0 shows all.
func (r *Renderer) Aspects(title string, aspects []model.AspectInstance, top int) error {
	if _, err := fmt.Fprintln(r.w, FormatTitle(fmt.Sprintf("%s (%d)", title, len(aspects)))); err != nil {
		return err
	}
	if len(aspects) == 0 {
		_, err := fmt.Fprintln(r.w, SubtleStyle.Render("No aspects found."))
		return err
	}

	shown := aspect.Top(aspects, top)
	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tBASE\tASPECT\tOTHER\tORB\tSEPARATION")
	_, _ = fmt.Fprintln(w, "\t────\t──────\t─────\t───\t──────────")
	for _, a := range shown {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f°\n",
			r.Icon(a.Type), a.BaseKey, a.Type, a.OtherKey, FormatOrb(a.Orb), a.Separation)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if hidden := len(aspects) - len(shown); hidden > 0 {
		_, err := fmt.Fprintln(r.w, SubtleStyle.Render(fmt.Sprintf("… %d more (use --top 0 to show all)", hidden)))
		return err
	}
	return nil
}

// Patterns prints every catalog pattern in catalog order, with a placeholder
// line for patterns that have no instances.
func (r *Renderer) Patterns(catalog pattern.Catalog, patterns map[string][]model.PatternInstance) error {
	var b strings.Builder
	for i, def := range catalog {
		if i > 0 {
			b.WriteString("\n")
		}
		instances := patterns[def.ID]
		b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%d)", def.Name, len(instances))))
		b.WriteString(" " + SubtleStyle.Render(def.AspectsLabel) + "\n")

		if len(instances) == 0 {
			b.WriteString("  " + SubtleStyle.Render(NoLinksMessage) + "\n")
			continue
		}
		for _, inst := range instances {
			b.WriteString("  " + StarIcon + " " + BoldStyle.Render(r.Describe(inst)) + "\n")
			if len(inst.Links) == 0 {
				b.WriteString("      " + SubtleStyle.Render(NoLinksMessage) + "\n")
				continue
			}
			for _, link := range inst.Links {
				b.WriteString("      " + r.FormatAspect(link) + "\n")
			}
		}
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Catalog lists pattern definitions.
func (r *Renderer) Catalog(catalog pattern.Catalog) error {
	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPOINTS\tASPECTS\tSHAPE")
	_, _ = fmt.Fprintln(w, "──\t────\t──────\t───────\t─────")
	for _, def := range catalog {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", def.ID, def.Name, def.Planets, def.AspectsLabel, def.Shape)
	}
	return w.Flush()
}

// Definition prints one pattern definition in detail.
func (r *Renderer) Definition(def model.PatternDefinition) error {
	aspects := make([]string, len(def.Aspects))
	for i, t := range def.Aspects {
		aspects[i] = r.Icon(t) + " " + string(t)
	}

	lines := []string{
		fmt.Sprintf("ID:           %s", def.ID),
		fmt.Sprintf("Points:       %s", def.Planets),
		fmt.Sprintf("Aspects:      %s", strings.Join(aspects, ", ")),
		fmt.Sprintf("Geometry:     %s", def.Geometry),
		fmt.Sprintf("Orbs:         %s", def.OrbGuide),
		fmt.Sprintf("Construction: %s", def.Construction),
		fmt.Sprintf("Shape:        %s", def.Shape),
	}
	_, err := fmt.Fprintln(r.w, RenderBox(def.Name, strings.Join(lines, "\n")))
	return err
}

// Charts lists stored charts.
func (r *Renderer) Charts(records []model.ChartRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(r.w, FormatInfo("No charts saved yet. Use 'stellium charts save' to add one."))
		return err
	}

	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPOINTS\tUPDATED")
	_, _ = fmt.Fprintln(w, "──\t────\t──────\t───────")
	for _, rec := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", rec.ID, rec.Name, rec.PointCount(), rec.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// Points prints the points of a chart ordered by key.
func (r *Renderer) Points(chart model.Chart) error {
	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tNAME\tLONGITUDE\tSIGN\tHOUSE\tR")
	_, _ = fmt.Fprintln(w, "───\t────\t─────────\t────\t─────\t─")
	for _, p := range chart.Points() {
		longitude := "—"
		if p.IsUsable() {
			longitude = fmt.Sprintf("%.2f°", p.Longitude())
		}
		retro := ""
		if p.Retrograde {
			retro = "℞"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.Key, p.Name, longitude, p.Sign, p.House, retro)
	}
	return w.Flush()
}

// Series prints one row per snapshot with aspect and pattern counts.
func (r *Renderer) Series(catalog pattern.Catalog, rows []SeriesRow) error {
	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)

	header := []string{"SNAPSHOT", "POINTS", "ASPECTS", "TIGHTEST"}
	rule := []string{"────────", "──────", "───────", "────────"}
	for _, def := range catalog {
		header = append(header, strings.ToUpper(def.ID))
		rule = append(rule, strings.Repeat("─", len(def.ID)))
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	_, _ = fmt.Fprintln(w, strings.Join(rule, "\t"))

	for _, row := range rows {
		tightest := "—"
		if len(row.Result.Aspects) > 0 {
			a := row.Result.Aspects[0]
			tightest = fmt.Sprintf("%s %s %s", a.BaseKey, r.Icon(a.Type), a.OtherKey)
		}
		cells := []string{row.Label, fmt.Sprint(len(row.Result.Keys)), fmt.Sprint(len(row.Result.Aspects)), tightest}
		counts := row.Result.Counts()
		for _, def := range catalog {
			cells = append(cells, fmt.Sprint(counts[def.ID]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}
