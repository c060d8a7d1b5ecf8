package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

const htmlHead = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Procurement plan %s</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.6em; text-align: left; }
</style>
</head>
<body>
`

const htmlFoot = "</body>\n</html>\n"

// RenderMarkdown builds the plan report as GitHub-flavored markdown
func RenderMarkdown(result *dto.PipelineResult) string {
	var b strings.Builder
	s := result.Summary

	fmt.Fprintf(&b, "# Procurement plan `%s`\n\n", result.RunID)
	fmt.Fprintf(&b, "| Metric | Value |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| Total cost | %.2f |\n", s.TotalCost)
	fmt.Fprintf(&b, "| Budget | %.2f |\n", s.Budget)
	fmt.Fprintf(&b, "| Within budget | %t |\n", s.WithinBudget)
	fmt.Fprintf(&b, "| Service target | %.2f |\n", s.ServiceTarget)
	fmt.Fprintf(&b, "| Service level | %.4f |\n", result.Scored.KPIs.ServiceLevel)
	fmt.Fprintf(&b, "| Stockout risk | %.4f |\n", result.Scored.KPIs.StockoutRisk)
	fmt.Fprintf(&b, "| Supplier diversity | %.4f |\n", result.Scored.KPIs.SupplierDiversity)
	fmt.Fprintf(&b, "| Score | %.3f |\n\n", result.Scored.Score)

	b.WriteString("## Allocation\n\n")
	if len(result.Allocation) == 0 {
		b.WriteString("No items allocated.\n\n")
	} else {
		b.WriteString("| Item | Supplier | Quantity | Unit price | Cost | Lead days |\n")
		b.WriteString("| --- | --- | ---: | ---: | ---: | ---: |\n")
		for _, row := range result.Allocation {
			fmt.Fprintf(&b, "| %s | %s | %g | %.2f | %.2f | %d |\n",
				escape(string(row.ItemID)), escape(string(row.SupplierID)),
				float64(row.Quantity), row.UnitPrice, row.Cost, row.LeadTimeDays)
		}
		b.WriteString("\n")
	}

	if len(result.Shortages) > 0 {
		b.WriteString("## Shortages\n\n| Item | Demand | Bought | Reason |\n| --- | ---: | ---: | --- |\n")
		for _, sh := range result.Shortages {
			fmt.Fprintf(&b, "| %s | %g | %g | %s |\n",
				escape(string(sh.ItemID)), float64(sh.Demand), float64(sh.Bought), sh.Reason)
		}
		b.WriteString("\n")
	}

	if len(result.Questions) > 0 {
		b.WriteString("## Next questions\n\n")
		for _, q := range result.Questions {
			fmt.Fprintf(&b, "- **%s** (VoI %.3f): %s\n", q.Prompt, q.VoIScore, q.Rationale)
		}
		b.WriteString("\n")
	}

	if c := result.Critique; c != nil {
		b.WriteString("## Critique\n\n")
		writeList(&b, "Assumptions", c.Assumptions)
		writeList(&b, "Risks", c.Risks)
		writeList(&b, "Tweak actions", c.TweakActions)
	}

	b.WriteString("## Evidence\n\n")
	for _, edge := range result.Evidence.Edges {
		fmt.Fprintf(&b, "- `%s` → `%s`: %s\n", edge.Source, edge.Target, edge.Reason)
	}
	for _, node := range result.Evidence.Nodes {
		if node.Kind != entities.NodeComponent {
			continue
		}
		if v, ok := node.Attributes["version"].(string); ok {
			fmt.Fprintf(&b, "- `%s` version %s\n", node.ID, v)
		}
	}
	return b.String()
}

// RenderHTML converts the markdown report into a standalone HTML page
func RenderHTML(result *dto.PipelineResult) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, htmlHead, result.RunID)
	if err := md.Convert([]byte(RenderMarkdown(result)), &buf); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	buf.WriteString(htmlFoot)
	return buf.Bytes(), nil
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
