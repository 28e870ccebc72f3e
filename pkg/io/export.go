package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bpmnlayout/pkg/bpmn"
)

// WriteDocument encodes d, geometry included, and writes it to w. The
// output reads back with [ReadDocument].
func WriteDocument(d *bpmn.Diagram, w io.Writer, f Format) error {
	var err error
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = errors.Join(enc.Encode(FromDiagram(d)), enc.Close())
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(FromDiagram(d))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Export writes d to path in the format its extension names. A failed
// write leaves a truncated file behind.
func Export(d *bpmn.Diagram, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WriteDocument(d, f, FormatOf(path))
}
