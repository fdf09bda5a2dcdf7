package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/sysdyn/internal/analysis"
	"github.com/san-kum/sysdyn/internal/behavior"
	"github.com/san-kum/sysdyn/internal/model"
)

func polarityBadge(p analysis.Polarity) string {
	switch p {
	case analysis.Reinforcing:
		return BadgeReinforcing.Render("R (+)")
	case analysis.Balancing:
		return BadgeBalancing.Render("B (-)")
	case analysis.Neutral:
		return BadgeNeutral.Render("N (0)")
	default:
		return BadgeAmbiguous.Render("?")
	}
}

func signSymbol(l analysis.LinkSign) string {
	if !l.Known {
		return BadgeAmbiguous.Render("?")
	}
	switch {
	case l.Sign > 0:
		return PositiveSign.Render("+")
	case l.Sign < 0:
		return NegativeSign.Render("-")
	default:
		return BadgeNeutral.Render("0")
	}
}

// LoopReport renders the classified feedback loops grouped by polarity.
func LoopReport(result *analysis.Result) string {
	var b strings.Builder
	b.WriteString(Title.Render("Feedback loops (polarity at t=0)"))
	b.WriteString("\n")

	if result == nil || result.Skipped {
		b.WriteString(Subtle.Render("  structural analysis skipped"))
		return b.String()
	}
	if len(result.Loops) == 0 {
		b.WriteString(Subtle.Render("  no feedback loops detected"))
		return b.String()
	}

	groups := []struct {
		title    string
		polarity analysis.Polarity
	}{
		{"Reinforcing", analysis.Reinforcing},
		{"Balancing", analysis.Balancing},
		{"Neutral", analysis.Neutral},
		{"Ambiguous", analysis.Ambiguous},
	}
	for _, g := range groups {
		var lines []string
		for _, l := range result.Loops {
			if l.Polarity != g.polarity {
				continue
			}
			line := "    " + polarityBadge(l.Polarity) + "  " + strings.Join(l.Nodes, " -> ")
			if len(l.Nodes) > 0 {
				line += " -> " + l.Nodes[0]
			}
			if l.Note != "" {
				line += Subtle.Render("  (" + l.Note + ")")
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		sort.Strings(lines)
		fmt.Fprintf(&b, "\n  %s:\n", g.title)
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// LinkReport renders every influence edge with its estimated sign.
// Parameters are tagged so constant sources stand out.
func LinkReport(result *analysis.Result, sys *model.System) string {
	var b strings.Builder
	b.WriteString(Title.Render("Link polarities (numerical perturbation at t=0)"))
	b.WriteString("\n")

	if result == nil || len(result.Links) == 0 {
		b.WriteString(Subtle.Render("  no links to report"))
		return b.String()
	}

	edges := make([]analysis.Edge, 0, len(result.Links))
	for e := range result.Links {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	for _, e := range edges {
		tag := ""
		if sys != nil {
			if _, ok := sys.Param(e.From); ok {
				tag = Subtle.Render(" (P)")
			}
		}
		fmt.Fprintf(&b, "  %s%s -> %s : %s\n", e.From, tag, e.To, signSymbol(result.Links[e]))
	}
	return b.String()
}

// BehaviorReport renders per-column behavior modes.
func BehaviorReport(descs []behavior.Descriptor) string {
	var b strings.Builder
	b.WriteString(Title.Render("Behavior modes"))
	b.WriteString("\n")

	sorted := append([]behavior.Descriptor(nil), descs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, d := range sorted {
		fmt.Fprintf(&b, "  %s %s\n", MetricLabel.Render(d.Name+":"), MetricValue.Render(d.Description))
	}
	return b.String()
}
