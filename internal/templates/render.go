package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/services/currency"
)

//go:embed layouts/*.html
var layouts embed.FS

// Page is the data of a full dashboard page
type Page struct {
	Title    string
	Theme    string
	Version  string
	NetWorth decimal.Decimal
	Body     string // HTML fragment
	Charts   *models.Charts
}

// Renderer handles template rendering
type Renderer struct {
	templates *template.Template
	logger    zerolog.Logger
}

// New parses every layouts/*.html template in fsys
func New(fsys fs.FS, logger zerolog.Logger) (*Renderer, error) {
	r := &Renderer{logger: logger}
	if err := r.loadTemplates(fsys); err != nil {
		return nil, err
	}
	return r, nil
}

// Default returns a renderer over the embedded layouts
func Default(logger zerolog.Logger) (*Renderer, error) {
	return New(layouts, logger)
}

// getFuncMap returns the template function map
func getFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatMoney":   currency.Format,
		"formatPercent": currency.FormatPercent,
		"colorClass":    colorClass,
		"safeHTML":      safeHTML,
		"toJSON":        jsonMarshal,
	}
}

// loadTemplates parses all templates, reporting every broken file at once
func (r *Renderer) loadTemplates(fsys fs.FS) error {
	files, err := fs.Glob(fsys, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("error globbing layouts: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files found")
	}

	tmpl := template.New("").Funcs(getFuncMap())
	var parseErrors []string
	for _, file := range files {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("  %s: failed to read: %v", file, err))
			continue
		}
		if _, err := tmpl.New(file).Parse(string(content)); err != nil {
			parseErrors = append(parseErrors, formatTemplateError(file, string(content), err))
		}
	}

	if len(parseErrors) > 0 {
		for _, e := range parseErrors {
			r.logger.Error().Msg(e)
		}
		return fmt.Errorf("template parsing failed with %d error(s)", len(parseErrors))
	}

	r.templates = tmpl
	r.logger.Debug().Int("files", len(files)).Msg("templates loaded")
	return nil
}

// formatTemplateError formats a template error with file context
func formatTemplateError(file, content string, err error) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", file, err.Error()))

	lineNum := extractLineNumber(err.Error())
	if lineNum <= 0 {
		return sb.String()
	}

	lines := strings.Split(content, "\n")
	start := max(lineNum-3, 0)
	end := min(lineNum+2, len(lines))
	for i := start; i < end; i++ {
		marker := "   "
		if i+1 == lineNum {
			marker = ">>>"
		}
		sb.WriteString(fmt.Sprintf("\n  %s %4d | %s", marker, i+1, lines[i]))
	}
	return sb.String()
}

var lineNumberRe = regexp.MustCompile(`:(\d+):`)

// extractLineNumber tries to extract a line number from a template error
func extractLineNumber(errStr string) int {
	matches := lineNumberRe.FindStringSubmatch(errStr)
	if len(matches) >= 2 {
		var lineNum int
		fmt.Sscanf(matches[1], "%d", &lineNum)
		return lineNum
	}
	return 0
}

// Render renders a named template as an HTML response
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) error {
	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("error rendering template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := io.WriteString(w, buf.String())
	return err
}

// RenderToString renders a template to a string
func (r *Renderer) RenderToString(name string, data any) (string, error) {
	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Template functions

func colorClass(v decimal.Decimal) string {
	switch v.Sign() {
	case 1:
		return "positive"
	case -1:
		return "negative"
	}
	return ""
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func jsonMarshal(v any) template.JS {
	data, err := json.Marshal(v)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(data)
}
