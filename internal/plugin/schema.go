// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pattern Lab Contributors

package plugin

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	compiledSchema *jschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// GetSchemaID returns the $id of the descriptor schema.
func GetSchemaID() string {
	return "https://patternlab.io/schemas/plugin-descriptor.schema.json"
}

// GenerateDescriptorSchema generates a JSON Schema from the Descriptor struct.
func GenerateDescriptorSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Descriptor{})

	schema.ID = jsonschema.ID(GetSchemaID())
	schema.Title = "Pattern Lab Plugin Descriptor"
	schema.Description = "Schema for patternlab-components/packages/<plugin>.json files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("schema").Hint("failed to marshal schema").Wrap(err)
	}
	return data, nil
}

// ValidateDescriptor validates JSON descriptor data against the schema.
func ValidateDescriptor(data []byte) error {
	if len(data) == 0 {
		return oops.In("schema").Code(CodeDescriptorInvalid).New("descriptor data is empty")
	}

	sch, err := getCompiledSchema()
	if err != nil {
		return err
	}

	inst, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return oops.In("schema").Code(CodeDescriptorInvalid).Hint("invalid JSON").Wrap(err)
	}

	if err := sch.Validate(inst); err != nil {
		return oops.In("schema").Code(CodeDescriptorInvalid).Hint("schema validation failed").Wrap(err)
	}
	return nil
}

func getCompiledSchema() (*jschema.Schema, error) {
	compileOnce.Do(func() {
		schemaBytes, err := GenerateDescriptorSchema()
		if err != nil {
			compileErr = err
			return
		}

		doc, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = oops.In("schema").Hint("failed to parse schema JSON").Wrap(err)
			return
		}

		c := jschema.NewCompiler()
		if err := c.AddResource("descriptor.schema.json", doc); err != nil {
			compileErr = oops.In("schema").Hint("failed to add schema resource").Wrap(err)
			return
		}

		compiledSchema, err = c.Compile("descriptor.schema.json")
		if err != nil {
			compileErr = oops.In("schema").Hint("failed to compile schema").Wrap(err)
		}
	})
	return compiledSchema, compileErr
}
