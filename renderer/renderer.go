package renderer

import (
	"io"

	"github.com/brianolson/ballotstudio/layout"
)

// DocumentInfo is the metadata written into an output file.
type DocumentInfo struct {
	Title    string
	Subject  string
	Keywords []string
	Author   string
	Creator  string
}

// Document is a multi-page drawing that can be written out once every page
// has been finished with ShowPage.
type Document interface {
	layout.Surface
	// Pages returns the number of finished pages.
	Pages() int
	Write(w io.Writer, info DocumentInfo) error
}

// Renderer measures text for layout and creates output documents.
// Sizes are points.
type Renderer interface {
	layout.Typesetter
	NewDocument(width, height float64) Document
}
