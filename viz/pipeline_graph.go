// ABOUTME: Graphviz rendering of the deal pipeline
// ABOUTME: Stage nodes chained in pipeline order with each deal hanging off its stage
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/crmdash/models"
)

type GraphGenerator struct {
	contacts []models.Contact
	deals    []models.Deal
}

func NewGraphGenerator(contacts []models.Contact, deals []models.Deal) *GraphGenerator {
	return &GraphGenerator{contacts: contacts, deals: deals}
}

// GeneratePipelineGraph renders the pipeline as DOT source.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	out, err := g.RenderPipeline(ctx, graphviz.XDOT)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RenderPipeline renders the pipeline in format, such as graphviz.SVG.
func (g *GraphGenerator) RenderPipeline(ctx context.Context, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel("Deal Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	// Stage nodes, chained in pipeline order
	stageNodes := make(map[models.Stage]*cgraph.Node)
	var prev *cgraph.Node
	for _, s := range StageSummaries(g.deals, models.DealStages) {
		node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%s", s.Stage))
		if err != nil {
			return nil, fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%d deals\n%s", s.Label(), s.Count, FormatMoney(s.Value)))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(stageColor(s.Stage))
		stageNodes[s.Stage] = node

		if s.Stage == models.StageClosedLost {
			continue
		}
		if prev != nil {
			if _, err := graph.CreateEdgeByName("next", prev, node); err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
		}
		prev = node
	}

	// Lost deals branch off negotiation.
	if neg, ok := stageNodes[models.StageNegotiation]; ok {
		if lost, ok := stageNodes[models.StageClosedLost]; ok {
			edge, err := graph.CreateEdgeByName("lost", neg, lost)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
		}
	}

	names := ContactNames(g.contacts)
	for _, deal := range g.deals {
		stageNode, ok := stageNodes[deal.Stage]
		if !ok {
			continue
		}
		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%s", deal.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s\n%s · %d%%",
			deal.Title, ContactName(names, deal.ContactID), FormatMoney(deal.Value), deal.Probability))
		node.SetShape("ellipse")

		edge, err := graph.CreateEdgeByName("in_stage", stageNode, node)
		if err != nil {
			return nil, fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dotted")
		edge.SetDir("none")
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.Bytes(), nil
}

func stageColor(s models.Stage) string {
	switch s {
	case models.StageClosedWon:
		return "lightgreen"
	case models.StageClosedLost:
		return "lightpink"
	case models.StageNegotiation, models.StageProposal:
		return "lightyellow"
	default:
		return "lightblue"
	}
}
