// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed endpoints.json
var embedded []byte

// Default returns the catalogue compiled into the binary.
func Default() (*EndpointRegistry, error) {
	return Parse(embedded)
}

func LoadRegistry(path string) (*EndpointRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*EndpointRegistry, error) {
	var reg EndpointRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Find returns the endpoint with the given id.
func (r *EndpointRegistry) Find(id string) (*Endpoint, bool) {
	for i := range r.Endpoints {
		if r.Endpoints[i].ID == id {
			return &r.Endpoints[i], true
		}
	}
	return nil, false
}

// Validate checks ids are unique, required fields are set and every input
// schema compiles.
func (r *EndpointRegistry) Validate() error {
	if len(r.Endpoints) == 0 {
		return fmt.Errorf("registry contains no endpoints")
	}

	ids := make(map[string]bool)
	routes := make(map[string]bool)
	for _, e := range r.Endpoints {
		if e.ID == "" {
			return fmt.Errorf("endpoint missing required field: ID")
		}
		if ids[e.ID] {
			return fmt.Errorf("duplicate endpoint ID: %s", e.ID)
		}
		ids[e.ID] = true

		if e.Method == "" || e.Path == "" {
			return fmt.Errorf("endpoint %s missing required field: Method/Path", e.ID)
		}
		route := e.Method + " " + e.Path
		if routes[route] {
			return fmt.Errorf("duplicate route: %s", route)
		}
		routes[route] = true

		if e.DisplayName == "" {
			return fmt.Errorf("endpoint %s missing required field: DisplayName", e.ID)
		}
		if len(e.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(e.InputSchema)); err != nil {
				return fmt.Errorf("endpoint %s has an invalid input schema: %w", e.ID, err)
			}
		}
	}
	return nil
}

// ValidateInput checks doc against the endpoint's input schema and returns
// one message per violation. Endpoints without a schema accept anything.
func (e *Endpoint) ValidateInput(doc interface{}) ([]string, error) {
	if len(e.InputSchema) == 0 {
		return nil, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(e.InputSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return errs, nil
}

// Summary is a one-line description used by listings.
func (e *Endpoint) Summary() string {
	return fmt.Sprintf("%-6s %-24s %s [%s]", e.Method, e.Path, e.ID, strings.Join(e.Tags, ","))
}
