// Package deck assembles the executive HTML slide deck from the written
// summary and chart images.
package deck

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fpna_dashboard/pkg/core/store"
	"fpna_dashboard/pkg/core/utils"
	"fpna_dashboard/pkg/models"
)

// Fixed deck text.
const (
	Title              = "FP&A AI Dashboard – Executive Pack"
	Subtitle           = "Automated Variance • Forecast • AI Summary"
	SummaryUnavailable = "Summary unavailable."
)

// ChartSlide is a picture slide: a title and the image file it shows.
type ChartSlide struct {
	Title string
	File  string
}

// DefaultCharts lists the picture slides in deck order.
var DefaultCharts = []ChartSlide{
	{Title: "Revenue vs Budget (Trend)", File: models.TrendChartFile},
	{Title: "Variance % by Department", File: models.VarianceChartFile},
	{Title: "Forecast by Department (6 mo.)", File: models.ForecastChartFile},
}

var deckTmpl = template.Must(template.New("deck").Parse(deckTemplate))

type chartView struct {
	Title  string
	Source template.URL
}

type deckView struct {
	DocumentTitle string
	Title         string
	Subtitle      string
	Summary       []template.HTML
	Charts        []chartView
	GeneratedAt   string
}

// Builder renders the deck from a data directory.
type Builder struct {
	Store  *store.TableStore
	Charts []ChartSlide
	Now    func() time.Time
}

// NewBuilder returns a Builder over s with the default chart slides.
func NewBuilder(s *store.TableStore) *Builder {
	return &Builder{Store: s, Charts: DefaultCharts, Now: time.Now}
}

// Build renders the deck. A missing summary becomes SummaryUnavailable and a
// missing chart drops its slide; other read errors are returned.
func (b *Builder) Build() ([]byte, error) {
	md, err := b.Store.ReadFile(models.ExecSummaryFile)
	var missing *store.MissingInputError
	switch {
	case err == nil:
	case errors.As(err, &missing):
		md = []byte(SummaryUnavailable)
	default:
		return nil, err
	}

	summary, err := SummaryBlocks(string(md))
	if err != nil {
		return nil, err
	}

	view := deckView{
		DocumentTitle: Title,
		Title:         Title,
		Subtitle:      Subtitle,
		Summary:       summary,
		GeneratedAt:   b.Now().Format("2006-01-02 15:04"),
	}
	if h := utils.Headline(string(md)); h != "" {
		view.DocumentTitle = Title + " · " + h
	}

	for _, c := range b.Charts {
		data, err := b.Store.ReadFile(c.File)
		if errors.As(err, &missing) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view.Charts = append(view.Charts, chartView{
			Title:  c.Title,
			Source: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)),
		})
	}

	var buf bytes.Buffer
	if err := deckTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// Write builds the deck and publishes fpna_onepager.html.
func (b *Builder) Write() (int, error) {
	html, err := b.Build()
	if err != nil {
		return 0, err
	}
	if err := b.Store.WriteFiles(store.File{Name: models.DeckFile, Data: html}); err != nil {
		return 0, err
	}
	return len(html), nil
}

// SummaryBlocks renders markdown to HTML and returns its top-level blocks,
// with every source line of a paragraph as its own paragraph so line-per-bullet
// summaries keep their layout.
func SummaryBlocks(md string) ([]template.HTML, error) {
	rendered, err := utils.RenderHTML(md)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered summary: %w", err)
	}

	var blocks []template.HTML
	doc.Find("body").Children().Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "p" {
			inner, err := sel.Html()
			if err != nil {
				return
			}
			for _, line := range strings.Split(inner, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					blocks = append(blocks, template.HTML("<p>"+line+"</p>"))
				}
			}
			return
		}
		if outer, err := goquery.OuterHtml(sel); err == nil {
			blocks = append(blocks, template.HTML(outer))
		}
	})
	return blocks, nil
}
