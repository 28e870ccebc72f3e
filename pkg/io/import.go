package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
)

// Format is the encoding of a diagram document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown document format %q (want json or yaml)", s)
}

// FormatOf infers the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// DecodeDocument parses and schema-validates a document without building
// the diagram.
func DecodeDocument(data []byte, f Format) (Document, error) {
	var raw any
	var doc Document
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return doc, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode yaml")
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return doc, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
		}
	}
	if err := Validate(raw); err != nil {
		return doc, err
	}

	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	}
	if err != nil {
		return doc, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s", f)
	}
	return doc, nil
}

// ReadDocument decodes a diagram document from r.
//
// ReadDocument returns an [errors.ErrCodeInvalidDocument] error if the input
// is malformed, violates the document schema, or describes an inconsistent
// diagram (duplicate ids, dangling references, invalid containers). It
// does not close r.
func ReadDocument(r io.Reader, f Format) (*bpmn.Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	doc, err := DecodeDocument(data, f)
	if err != nil {
		return nil, err
	}
	return doc.Diagram()
}

// Import reads the document at path, picking the format from the file
// extension.
func Import(path string) (*bpmn.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	d, err := ReadDocument(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
