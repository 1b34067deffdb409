package tools

import (
	"context"
	"encoding/json"

	"github.com/GregMSThompson/explorer-guide/internal/dto"
)

// Handler runs a tool with the arguments the model supplied and returns a
// JSON-serializable result.
type Handler func(ctx context.Context, args map[string]any) (any, error)

type Tool struct {
	Name        string
	Description string
	Parameters  *dto.VertexSchema
	Handler     Handler
}

// Registry is the ordered set of tools declared to the model.
type Registry struct {
	tools []Tool
	index map[string]int
}

// NewRegistry keeps declaration order. A later tool with a duplicate name replaces the earlier one.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{index: make(map[string]int, len(tools))}
	for _, t := range tools {
		if i, ok := r.index[t.Name]; ok {
			r.tools[i] = t
			continue
		}
		r.index[t.Name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

func (r *Registry) Declarations() []dto.VertexTool {
	out := make([]dto.VertexTool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, dto.VertexTool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return out
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Name)
	}
	return out
}

func decodeArgs[T any](args map[string]any) (T, error) {
	var out T
	if len(args) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

type queryArgs struct {
	Query string `json:"query"`
}

var querySchema = &dto.VertexSchema{
	Type: "object",
	Properties: map[string]*dto.VertexSchema{
		"query": {Type: "string", Description: "Free-text search query."},
	},
	Required: []string{"query"},
}
