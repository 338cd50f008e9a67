package ui

import (
	"embed"
	"html/template"
	"io"
)

// PageTemplate is the template name registered with the gin engine.
const PageTemplate = "page.html"

const (
	Title     = "Resume Checker"
	Subheader = "Get instant, AI-driven analysis and feedback to guarantee your resume bypasses ATS filters and lands you the interview."
	Footer    = "Your data is processed securely and is not stored."
	Uploaded  = "PDF Uploaded Successfully"
)

//go:embed templates/*.html
var templateFS embed.FS

// Button is one action trigger.
type Button struct {
	Key          string
	Label        string
	RunningLabel string
}

// Status is the status region of the last action.
type Status struct {
	Label   string
	Steps   []string
	Failed  bool
	Message string
	Notice  string
}

// Result is the labeled result block.
type Result struct {
	Label string
	Text  string
}

// Page is the view model for PageTemplate.
type Page struct {
	Title          string
	Subheader      string
	Footer         string
	JobDescription string
	UploadName     string
	Buttons        []Button
	Status         *Status
	Result         *Result
}

// NewPage fills in the fixed copy.
func NewPage() Page {
	return Page{Title: Title, Subheader: Subheader, Footer: Footer}
}

// HasUpload reports whether the upload indicator is shown.
func (p Page) HasUpload() bool { return p.UploadName != "" }

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"uploadedLabel": func() string { return Uploaded },
	}).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates panics when the embedded templates do not parse.
func MustTemplates() *template.Template {
	t, err := Templates()
	if err != nil {
		panic(err)
	}
	return t
}

// Render writes the page outside of gin, for tests and the CLI.
func Render(w io.Writer, page Page) error {
	t, err := Templates()
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, PageTemplate, page)
}
