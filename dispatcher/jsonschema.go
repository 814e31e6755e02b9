package dispatcher

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// schemaCache compiles each tool's input_schema once and reuses the
// compiled schema for every subsequent tools/call, since compilation is
// the expensive part of jsonschema/v6's API.
type schemaCache struct {
	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{schemas: make(map[string]*jsonschema.Schema)}
}

func (c *schemaCache) compiled(tool *mcpptype.Tool) (*jsonschema.Schema, error) {
	if tool == nil || len(tool.InputSchema) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.schemas[tool.Name]; ok {
		return s, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(tool.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("dispatcher: parsing input_schema for %s: %w", tool.Name, err)
	}

	url := "mem://tool/" + tool.Name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("dispatcher: adding input_schema resource for %s: %w", tool.Name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: compiling input_schema for %s: %w", tool.Name, err)
	}
	c.schemas[tool.Name] = schema
	return schema, nil
}

// validateArgs checks the call arguments against the tool's declared
// input_schema, when it has one. The compiled-schema cache lives on h,
// scoped to the server process, so tests can construct fresh Handlers
// without leaking compiled schemas across them.
func (h *Handler) validateArgs(tool *mcpptype.Tool, args map[string]any) *mcpptype.RPCError {
	h.schemaCacheOnce.Do(func() { h.schemaCache = newSchemaCache() })
	schema, err := h.schemaCache.compiled(tool)
	if err != nil {
		return mcpptype.NewRPCError(mcpptype.ErrInternal, err.Error())
	}
	if schema == nil {
		return nil
	}
	if err := schema.Validate(toAnyMap(args)); err != nil {
		return mcpptype.NewRPCError(mcpptype.ErrInvalidParams, "arguments do not satisfy input_schema: "+err.Error())
	}
	return nil
}

// toAnyMap widens a map[string]any into the map[string]interface{} shape
// jsonschema/v6's Validate expects; both are the same underlying type,
// this exists purely as a documented call site for the conversion.
func toAnyMap(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
