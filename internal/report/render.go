package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/wonny/flipwatch/internal/contracts"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html").
		Funcs(template.FuncMap{
			"join": strings.Join,
		}).
		ParseFS(templateFS, "templates/report.html"),
)

// Renderer turns a RunReport into an artifact
type Renderer interface {
	Render(w io.Writer, r *contracts.RunReport) error
	ContentType() string
}

// NewRenderer returns the renderer for a REPORT_FORMAT value
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "html", "":
		return HTMLRenderer{}, nil
	case "json":
		return JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// HTMLRenderer renders the static Bootstrap page
type HTMLRenderer struct{}

// htmlView is the template data
type htmlView struct {
	Title    string
	Headline string
	Report   *contracts.RunReport
	Failed   bool
	NoData   bool
	Partial  bool
	Cutoff   string
}

// Render executes the HTML template
func (HTMLRenderer) Render(w io.Writer, r *contracts.RunReport) error {
	view := htmlView{
		Title:    "台股隔日沖監控",
		Headline: r.Headline(),
		Report:   r,
		Failed:   r.Status == contracts.StatusFailed,
		NoData:   r.Status == contracts.StatusNoSessionData,
		Partial:  r.Status == contracts.StatusPartial,
		Cutoff:   r.Params.Cutoff,
	}
	if err := reportTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// ContentType for HTTP responses
func (HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// JSONRenderer renders the report as indented JSON
type JSONRenderer struct{}

// Render encodes the report
func (JSONRenderer) Render(w io.Writer, r *contracts.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("render json report: %w", err)
	}
	return nil
}

// ContentType for HTTP responses
func (JSONRenderer) ContentType() string {
	return "application/json"
}
