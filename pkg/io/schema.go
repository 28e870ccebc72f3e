package io

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/matzehuels/bpmnlayout/pkg/errors"
)

const schemaURL = "https://bpmnlayout.dev/schemas/diagram.json"

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON Schema diagram documents are validated against.
func Schema() []byte { return bytes.Clone(schemaJSON) }

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Validate checks a decoded document value (as produced by encoding/json or
// yaml.v3) against the document schema.
func Validate(v any) error {
	s, err := documentSchema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "document schema")
	}
	inst, err := toJSONValue(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "document is not JSON compatible")
	}
	if err := s.Validate(inst); err != nil {
		return schemaError(err)
	}
	return nil
}

// toJSONValue round-trips v through encoding/json so that numbers become
// json.Number, which the validator requires.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}

func schemaError(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "schema validation")
	}
	v := violations(verr)
	switch len(v) {
	case 0:
		return errors.New(errors.ErrCodeInvalidDocument, "%s", verr.Error())
	case 1:
		return errors.New(errors.ErrCodeInvalidDocument, "%s", v[0])
	}
	return errors.New(errors.ErrCodeInvalidDocument, "%d schema violations: %s", len(v), strings.Join(v, "; "))
}

// violations collects the leaf errors of verr with their instance location.
func violations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		return []string{fmt.Sprintf("/%s: %s", strings.Join(verr.InstanceLocation, "/"), verr.Error())}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, violations(c)...)
	}
	return out
}
