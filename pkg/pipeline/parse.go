package pipeline

import (
	"bytes"
	"fmt"
	"os"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	docio "github.com/matzehuels/bpmnlayout/pkg/io"
)

// Source names a diagram document: inline content or a file path.
type Source struct {
	// Content is the document itself. It wins over Path.
	Content []byte `json:"content,omitempty"`
	// Path is a document file; its extension selects the format when
	// Format is empty.
	Path string `json:"path,omitempty"`
	// Format is "json" or "yaml". Empty means JSON for inline content.
	Format string `json:"format,omitempty"`
}

// Parse decodes the diagram a source names.
func Parse(src Source) (*bpmn.Diagram, error) {
	f, err := src.format()
	if err != nil {
		return nil, err
	}
	if len(src.Content) > 0 {
		return docio.ReadDocument(bytes.NewReader(src.Content), f)
	}
	if src.Path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document content or path is required")
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Path, err)
	}
	d, err := docio.ReadDocument(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	return d, nil
}

func (src Source) format() (docio.Format, error) {
	switch {
	case src.Format != "":
		return docio.ParseFormat(src.Format)
	case len(src.Content) == 0 && src.Path != "":
		return docio.FormatOf(src.Path), nil
	}
	return docio.FormatJSON, nil
}

// DocumentHash is the content hash of d as a document, geometry, pins and
// lanes included.
func DocumentHash(d *bpmn.Diagram) (string, error) {
	var buf bytes.Buffer
	if err := docio.WriteDocument(d, &buf, docio.FormatJSON); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}
