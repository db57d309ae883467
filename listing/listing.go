// Package listing prints recordings as human readable text.
package listing

import (
	"embed"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/vsariola/vpiano"
)

//go:embed templates/*
var templateFS embed.FS

type Lister struct {
	Template *template.Template
}

type listingData struct {
	Title    string
	Events   vpiano.EventLog
	Duration float64
}

// New returns a lister using the default listing template.
func New() (*Lister, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Lister{Template: tmpl}, nil
}

// Render writes one line per event, under a title and followed by the total
// length of the recording.
func (l *Lister) Render(w io.Writer, title string, events vpiano.EventLog) error {
	data := listingData{Title: title, Events: events, Duration: events.Duration()}
	if err := l.Template.ExecuteTemplate(w, "listing.txt", data); err != nil {
		return fmt.Errorf(`could not execute template "listing.txt": %v`, err)
	}
	return nil
}
