package pipeline

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/aluiziolira/go-scrape-catalog/models"
	"github.com/nao1215/markdown"
)

// WriteReportFile writes the Markdown run report to filename.
func WriteReportFile(filename string, result *models.ScraperResult, outputFile string) error {
	if err := ensureDir(filename); err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteReport(f, result, outputFile); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteReport renders a Markdown summary of a run: counts, failed products,
// rejected links and failed search terms.
func WriteReport(w io.Writer, result *models.ScraperResult, outputFile string) error {
	md := markdown.NewMarkdown(w)

	md.H1("Catalog scrape report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", result.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.EndTime.Sub(result.StartTime).String()},
			{"Discovered URLs", strconv.Itoa(result.Discovered)},
			{"Submitted", strconv.Itoa(result.Submitted)},
			{"Succeeded", strconv.Itoa(result.Succeeded)},
			{"Failed", strconv.Itoa(result.ErrorCount)},
			{"Requests", strconv.Itoa(result.RequestCount)},
			{"Search pages", strconv.Itoa(result.PageCount)},
			{"Output", "`" + outputFile + "`"},
		},
	})
	md.PlainText("")

	if len(result.ErrorsByType) > 0 {
		md.H2("Errors by type")
		md.PlainText("")
		types := make([]string, 0, len(result.ErrorsByType))
		for k := range result.ErrorsByType {
			types = append(types, k)
		}
		sort.Strings(types)
		rows := make([][]string, 0, len(types))
		for _, k := range types {
			rows = append(rows, []string{k, strconv.Itoa(result.ErrorsByType[k])})
		}
		md.Table(markdown.TableSet{Header: []string{"Type", "Count"}, Rows: rows})
		md.PlainText("")
	}

	if len(result.FailedURLs) > 0 {
		md.H2("Failed products")
		md.PlainText("")
		md.BulletList(result.FailedURLs...)
		md.PlainText("")
	}

	if len(result.Rejections) > 0 {
		md.H2("Rejected links")
		md.PlainText("")
		rows := make([][]string, 0, len(result.Rejections))
		for _, r := range result.Rejections {
			rows = append(rows, []string{r.URL, r.Reason})
		}
		md.Table(markdown.TableSet{Header: []string{"URL", "Reason"}, Rows: rows})
		md.PlainText("")
	}

	if len(result.FailedTerms) > 0 {
		md.H2("Failed search terms")
		md.PlainText("")
		md.BulletList(result.FailedTerms...)
		md.PlainText("")
	}

	return md.Build()
}
