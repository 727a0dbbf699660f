// Package render draws the activity board as a full HTML page. Every call
// rebuilds the activity cards and the signup dropdown from scratch.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/Shivanand-hulikatti/school-activities/internal/board"
	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// Placeholder is the first, empty option of the signup dropdown.
const Placeholder = "-- Select an activity --"

//go:embed templates/*.html
var templatesFS embed.FS

// mdRenderer renders activity descriptions. Raw HTML in the input is
// escaped because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type option struct {
	Value string
	Label string
}

var categoryOptions = []option{
	{"", "All"},
	{"Games", "Games"},
	{"STEM", "STEM"},
	{"Sports", "Sports"},
}

var sortOptions = []option{
	{model.SortNone, "None"},
	{model.SortName, "Name"},
	{model.SortDate, "Date"},
}

var tpl = template.Must(template.New("board.html").Funcs(template.FuncMap{
	"markdown":    renderMarkdown,
	"categories":  func() []option { return categoryOptions },
	"sorts":       func() []option { return sortOptions },
	"placeholder": func() string { return Placeholder },
}).ParseFS(templatesFS, "templates/*.html"))

// Page is everything one render needs.
type Page struct {
	View board.View
	// Status is shown when Visible is set, for HideAfter. A zero HideAfter
	// means the full StatusDisplayDuration.
	Status    model.Status
	Visible   bool
	HideAfter time.Duration
	// Email and Activity refill the signup form. Both are empty after a
	// successful signup. The control panel and removal forms carry them
	// back as draft_email and draft_activity.
	Email    string
	Activity string
	// CSRFField is the hidden token input added to every POST form.
	CSRFField template.HTML
	// LoadFailedMessage replaces the activity list when View.LoadFailed.
	LoadFailedMessage string
}

// card is one activity as the template sees it.
type card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []string
}

type pageData struct {
	Page
	Cards []card
}

// HideAfterMillis is the browser-side delay before the status hides.
func (d pageData) HideAfterMillis() int64 {
	return d.HideAfter.Milliseconds()
}

// Board writes the board page for p to w.
func Board(w io.Writer, p Page) error {
	if p.LoadFailedMessage == "" {
		p.LoadFailedMessage = board.LoadFailedMessage
	}
	if p.HideAfter <= 0 {
		p.HideAfter = board.StatusDisplayDuration
	}

	data := pageData{Page: p}
	for _, rec := range p.View.Activities.Records() {
		data.Cards = append(data.Cards, card{
			Name:         rec.Name,
			Description:  rec.Description,
			Schedule:     rec.Schedule,
			SpotsLeft:    rec.SpotsLeft(),
			Participants: rec.Participants,
		})
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
