package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/procureplan/pkg/application/dto"
)

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	RunTime   time.Duration
}

// Generate writes the result in the configured format. JSON and HTML go to w unless an
// output directory is set; CSV always needs one.
func Generate(w io.Writer, result *dto.PipelineResult, config Config) error {
	switch config.Format {
	case FormatText, "":
		return generateTextOutput(w, result, config)
	case FormatJSON:
		return generateJSONOutput(w, result, config)
	case FormatCSV:
		return generateCSVOutput(w, result, config)
	case FormatHTML:
		return generateHTMLOutput(w, result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, result *dto.PipelineResult, config Config) error {
	fmt.Fprintf(w, "📊 Procurement Plan %s\n", result.RunID)
	fmt.Fprintf(w, "==========================================\n\n")

	s := result.Summary
	fmt.Fprintf(w, "Total Cost:     %.2f\n", s.TotalCost)
	fmt.Fprintf(w, "Budget:         %.2f (within budget: %t)\n", s.Budget, s.WithinBudget)
	fmt.Fprintf(w, "Service Target: %.2f\n", s.ServiceTarget)
	fmt.Fprintf(w, "Score:          %.3f\n", result.Scored.Score)
	fmt.Fprintf(w, "Service Level:  %.4f  Stockout Risk: %.4f  Diversity: %.4f\n",
		result.Scored.KPIs.ServiceLevel,
		result.Scored.KPIs.StockoutRisk,
		result.Scored.KPIs.SupplierDiversity)
	if config.Verbose {
		fmt.Fprintf(w, "Run Time:       %v\n", config.RunTime)
	}
	fmt.Fprintln(w)

	if len(result.Allocation) > 0 {
		fmt.Fprintf(w, "📋 Allocation:\n")
		fmt.Fprintf(w, "%-15s %-15s %-10s %-10s %-12s %-6s\n",
			"Item", "Supplier", "Qty", "Price", "Cost", "Lead")
		fmt.Fprintf(w, "%-15s %-15s %-10s %-10s %-12s %-6s\n",
			"---------------", "---------------", "----------", "----------", "------------", "------")
		for _, row := range result.Allocation {
			fmt.Fprintf(w, "%-15s %-15s %-10g %-10.2f %-12.2f %-6d\n",
				row.ItemID, row.SupplierID, float64(row.Quantity), row.UnitPrice, row.Cost, row.LeadTimeDays)
		}
		fmt.Fprintln(w)
	}

	if len(result.Adjustments.Removed) > 0 {
		fmt.Fprintf(w, "🚫 Policy Adjustments: removed %d, reassigned %d, dropped %d\n\n",
			len(result.Adjustments.Removed), len(result.Adjustments.Reassigned), len(result.Adjustments.Dropped))
	}

	if len(result.Shortages) > 0 {
		fmt.Fprintf(w, "⚠️  Shortages:\n")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-15s\n", "Item", "Demand", "Bought", "Reason")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-15s\n", "---------------", "----------", "----------", "---------------")
		for _, shortage := range result.Shortages {
			fmt.Fprintf(w, "%-15s %-10g %-10g %-15s\n",
				shortage.ItemID, float64(shortage.Demand), float64(shortage.Bought), shortage.Reason)
		}
		fmt.Fprintln(w)
	}

	if len(result.Questions) > 0 {
		fmt.Fprintf(w, "❓ Next Questions:\n")
		for _, q := range result.Questions {
			fmt.Fprintf(w, "  [%.3f] %s: %s\n", q.VoIScore, q.Prompt, q.Rationale)
		}
		fmt.Fprintln(w)
	}

	if result.Critique != nil {
		fmt.Fprintf(w, "📝 Critique:\n")
		for _, a := range result.Critique.Assumptions {
			fmt.Fprintf(w, "  assumption: %s\n", a)
		}
		for _, r := range result.Critique.Risks {
			fmt.Fprintf(w, "  risk: %s\n", r)
		}
		for _, t := range result.Critique.TweakActions {
			fmt.Fprintf(w, "  tweak: %s\n", t)
		}
	}
	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, result *dto.PipelineResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	filename, err := writeFile(config.OutputDir, "plan.json", jsonData)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes allocation, shortage and forecast tables as CSV files
func generateCSVOutput(w io.Writer, result *dto.PipelineResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	allocFile := filepath.Join(config.OutputDir, "allocation.csv")
	if err := writeAllocationCSV(result, allocFile); err != nil {
		return fmt.Errorf("failed to write allocation CSV: %w", err)
	}
	shortageFile := filepath.Join(config.OutputDir, "shortages.csv")
	if err := writeShortagesCSV(result, shortageFile); err != nil {
		return fmt.Errorf("failed to write shortages CSV: %w", err)
	}
	forecastFile := filepath.Join(config.OutputDir, "forecast.csv")
	if err := writeForecastCSV(result, forecastFile); err != nil {
		return fmt.Errorf("failed to write forecast CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		fmt.Fprintf(w, "  Allocation: %s\n", allocFile)
		fmt.Fprintf(w, "  Shortages: %s\n", shortageFile)
		fmt.Fprintf(w, "  Forecast: %s\n", forecastFile)
	}
	return nil
}

func generateHTMLOutput(w io.Writer, result *dto.PipelineResult, config Config) error {
	html, err := RenderHTML(result)
	if err != nil {
		return err
	}
	if config.OutputDir == "" {
		_, err = w.Write(html)
		return err
	}

	filename, err := writeFile(config.OutputDir, "plan.html", html)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(w, "🌐 HTML report saved to: %s\n", filename)
	}
	return nil
}

func writeAllocationCSV(result *dto.PipelineResult, filename string) error {
	records := [][]string{{"item_id", "supplier_id", "unit_price", "quantity", "cost", "lead_time_days"}}
	for _, row := range result.Allocation {
		records = append(records, []string{
			string(row.ItemID),
			string(row.SupplierID),
			formatFloat(row.UnitPrice),
			formatFloat(float64(row.Quantity)),
			formatFloat(row.Cost),
			strconv.Itoa(row.LeadTimeDays),
		})
	}
	return writeCSV(filename, records)
}

func writeShortagesCSV(result *dto.PipelineResult, filename string) error {
	records := [][]string{{"item_id", "demand", "bought", "reason"}}
	for _, s := range result.Shortages {
		records = append(records, []string{
			string(s.ItemID),
			formatFloat(float64(s.Demand)),
			formatFloat(float64(s.Bought)),
			s.Reason,
		})
	}
	return writeCSV(filename, records)
}

func writeForecastCSV(result *dto.PipelineResult, filename string) error {
	records := [][]string{{"item_id", "date", "forecast_qty"}}
	for _, p := range result.Forecast {
		records = append(records, []string{
			string(p.ItemID),
			p.Date.Format("2006-01-02"),
			formatFloat(float64(p.ForecastQty)),
		})
	}
	return writeCSV(filename, records)
}

func writeCSV(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}

func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return filename, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
