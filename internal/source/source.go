package source

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source is an ordered list of gallery images.
type Source interface {
	Len() int
	Ref(index int) string
	Open(index int) (image.Image, error)
	Close() error
}

// FitzPDFSource exposes every page of a PDF as one gallery image.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 72
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) Len() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) Ref(index int) string {
	return fmt.Sprintf("%s#page=%d", f.path, index+1)
}

func (f *FitzPDFSource) Open(index int) (image.Image, error) {
	// Загрузчик работает параллельно, поэтому каждая страница открывает свой документ
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// Multi concatenates several sources.
type Multi struct {
	parts []Source
}

// New resolves image references: directories expand to their images, *.pdf
// files to their pages, anything else is taken as a single image file.
// Unreadable single files are not an error here; they fail on Open.
func New(refs []string, dpi int) (*Multi, error) {
	m := &Multi{}
	var files []string

	flush := func() {
		if len(files) > 0 {
			m.parts = append(m.parts, NewFileSource(files))
			files = nil
		}
	}

	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}

		if strings.HasSuffix(strings.ToLower(ref), ".pdf") {
			flush()
			pdf, err := NewFitzPDFSource(ref, dpi)
			if err != nil {
				m.Close()
				return nil, fmt.Errorf("open pdf %s: %w", ref, err)
			}
			m.parts = append(m.parts, pdf)
			continue
		}

		if fi, err := os.Stat(ref); err == nil && fi.IsDir() {
			dir, err := NewImageSource(ref)
			if err != nil {
				m.Close()
				return nil, fmt.Errorf("read image dir %s: %w", ref, err)
			}
			files = append(files, dir.paths...)
			continue
		}

		files = append(files, filepath.Clean(ref))
	}
	flush()

	return m, nil
}

func (m *Multi) Len() int {
	n := 0
	for _, p := range m.parts {
		n += p.Len()
	}
	return n
}

func (m *Multi) locate(index int) (Source, int, bool) {
	for _, p := range m.parts {
		if index < p.Len() {
			return p, index, true
		}
		index -= p.Len()
	}
	return nil, 0, false
}

func (m *Multi) Ref(index int) string {
	p, i, ok := m.locate(index)
	if !ok {
		return ""
	}
	return p.Ref(i)
}

func (m *Multi) Open(index int) (image.Image, error) {
	p, i, ok := m.locate(index)
	if !ok || index < 0 {
		return nil, fmt.Errorf("image %d out of range", index)
	}
	return p.Open(i)
}

func (m *Multi) Close() error {
	var first error
	for _, p := range m.parts {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
