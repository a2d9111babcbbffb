package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/resistanceisuseless/subrecon/internal/config"
	"github.com/resistanceisuseless/subrecon/internal/enumeration"
	"github.com/resistanceisuseless/subrecon/internal/takeover"
)

type Writer struct {
	config *config.Config
}

func New(config *config.Config) *Writer {
	return &Writer{
		config: config,
	}
}

// WriteResults writes resp to the configured file, or stdout for "-".
func (w *Writer) WriteResults(resp enumeration.Response) error {
	if w.config.Output.File == "" || w.config.Output.File == "-" {
		return w.Encode(os.Stdout, resp)
	}

	file, err := os.Create(w.config.Output.File)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := w.Encode(file, resp); err != nil {
		return err
	}
	return file.Close()
}

// Encode renders resp in the configured format.
func (w *Writer) Encode(out io.Writer, resp enumeration.Response) error {
	switch w.config.Output.Format {
	case "json", "":
		return writeJSON(out, resp)
	case "csv":
		return writeCSV(out, resp)
	case "text":
		// fatih/color only knows whether stdout is a terminal
		return writeText(out, resp, out == io.Writer(os.Stdout))
	default:
		return fmt.Errorf("unsupported output format: %s", w.config.Output.Format)
	}
}

func writeJSON(out io.Writer, resp enumeration.Response) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeCSV(out io.Writer, resp enumeration.Response) error {
	writer := csv.NewWriter(out)

	header := []string{"Subdomain", "Record_Type", "Value", "Additional_Info"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, detail := range resp.FoundSubdomains {
		info := ""
		if detail.AdditionalInfo != nil {
			info = *detail.AdditionalInfo
		}
		row := []string{
			detail.Subdomain,
			detail.RecordType.String(),
			strings.Join(detail.Value.Strings(), ";"),
			info,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

var (
	typeColor = map[string]*color.Color{
		"A":     color.New(color.FgGreen),
		"CNAME": color.New(color.FgCyan),
		"MX":    color.New(color.FgMagenta),
	}
	riskColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// paint colors s when colored is set. color.NoColor still applies.
func paint(c *color.Color, colored bool, s string) string {
	if !colored {
		return s
	}
	return c.Sprint(s)
}

// writeText prints one aligned line per finding. Colors are only used for
// stdout.
func writeText(out io.Writer, resp enumeration.Response, colored bool) error {
	width := 0
	for _, detail := range resp.FoundSubdomains {
		if len(detail.Subdomain) > width {
			width = len(detail.Subdomain)
		}
	}

	for _, detail := range resp.FoundSubdomains {
		rtype := detail.RecordType.String()
		label := fmt.Sprintf("%-5s", rtype)
		if c, ok := typeColor[rtype]; ok {
			label = paint(c, colored, label)
		}

		line := fmt.Sprintf("[%s] %-*s  %s", label, width, detail.Subdomain, strings.Join(detail.Value.Strings(), ", "))
		if detail.AdditionalInfo != nil {
			info := *detail.AdditionalInfo
			if info == takeover.RiskNote {
				info = paint(riskColor, colored, info)
			} else {
				info = paint(dimColor, colored, info)
			}
			line += "  (" + info + ")"
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write text output: %w", err)
		}
	}

	footer := fmt.Sprintf("%d of %d subdomains (page %d, page size %d)",
		len(resp.FoundSubdomains), resp.TotalSubdomains, resp.Page, resp.PageSize)
	if resp.WildcardDetected {
		footer += ", wildcard DNS detected"
	}
	if _, err := fmt.Fprintln(out, paint(dimColor, colored, footer)); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	return nil
}
