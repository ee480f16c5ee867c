// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"kpi-dashboard/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Method       string
	Route        string
	Description  string
	Category     string
	Timeout      string
	InputFields  string
	OutputFields string
	HasBody      bool
}

// parseSchema extracts properties from a JSON schema object
func parseSchema(schema map[string]interface{}) map[string]interface{} {
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		return props
	}
	return map[string]interface{}{}
}

// goTypeFromJSONType maps JSON schema types to Go types. Nullable types
// (["string","null"]) become pointers.
func goTypeFromJSONType(jsonType interface{}) string {
	switch jt := jsonType.(type) {
	case string:
		switch jt {
		case "string":
			return "string"
		case "number":
			return "float64"
		case "integer":
			return "int"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		}
	case []interface{}:
		var base interface{}
		nullable := false
		for _, t := range jt {
			if t == "null" {
				nullable = true
				continue
			}
			base = t
		}
		goType := goTypeFromJSONType(base)
		if nullable && goType != "interface{}" {
			return "*" + goType
		}
		return goType
	}
	return "interface{}"
}

// generateStructFields renders one field per schema property, sorted by name
// so regenerated files diff cleanly.
func generateStructFields(properties map[string]interface{}) string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []string
	for _, name := range names {
		details, ok := properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		field := fmt.Sprintf("\t%s %s `json:\"%s\"`", upperFirst(name), goTypeFromJSONType(details["type"]), name)
		if desc, ok := details["description"].(string); ok && desc != "" {
			field += " // " + desc
		}
		fields = append(fields, field)
	}
	return strings.Join(fields, "\n")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func newWorkerData(e *registry.Endpoint) WorkerData {
	timeout := e.Timeout
	if timeout == "" {
		timeout = "30s"
	}
	return WorkerData{
		Name:         e.DisplayName,
		PackageName:  strings.ReplaceAll(e.ID, "-", ""),
		TaskType:     e.TaskType,
		Method:       e.Method,
		Route:        e.Path,
		Description:  e.Description,
		Category:     e.Category,
		Timeout:      timeout,
		InputFields:  generateStructFields(parseSchema(e.InputSchema)),
		OutputFields: generateStructFields(parseSchema(e.OutputSchema)),
		HasBody:      e.Method == "POST" || e.Method == "PATCH" || e.Method == "PUT",
	}
}

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/requestid"
)

const (
	TaskType       = "{{ .TaskType }}"
	Route          = "{{ .Route }}"
	FailureSummary = "Failed to {{ .Name }}"
)

// Handler serves {{ .Method }} {{ .Route }}.
type Handler struct {
	config *Config
	logger logger.Logger
	errors *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		logger: l,
		errors: apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	input := &Input{}
{{- if .HasBody }}
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		h.errors.Handle(w, requestid.FromContext(r.Context()), FailureSummary,
			apperrors.NewInvalidRequestError("invalid JSON body"))
		return
	}
{{- end }}

	output, err := h.Execute(r.Context(), input)
	if err != nil {
		h.errors.Handle(w, requestid.FromContext(r.Context()), FailureSummary, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	output := &Output{}

	h.logger.WithContext(ctx).Info("{{ .TaskType }} completed", map[string]interface{}{
		"duration": time.Since(start).String(),
	})
	return output, nil
}
`

const configTemplate = `package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	timeout, _ := time.ParseDuration("{{ .Timeout }}")
	return &Config{Timeout: timeout}
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{ .InputFields }}
}

// Output is the body of {{ .Method }} {{ .Route }}.
type Output struct {
{{ .OutputFields }}
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"net/http"
	"net/http/httptest"
{{- if .HasBody }}
	"strings"
{{- end }}
	"testing"

	"github.com/stretchr/testify/assert"

	"kpi-dashboard/internal/common/logger"
)

func TestHandler_ServeHTTP(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	req := httptest.NewRequest(http.Method{{ methodConst .Method }}, Route, {{ if .HasBody }}strings.NewReader("{}"){{ else }}nil{{ end }})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
`

var templates = map[string]string{
	"handler.go":      handlerTemplate,
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler_test.go": testTemplate,
}

var funcMap = template.FuncMap{
	"methodConst": func(method string) string {
		return upperFirst(strings.ToLower(method))
	},
}

func render(w io.Writer, name string, data WorkerData) error {
	tmpl, err := template.New(name).Funcs(funcMap).Parse(templates[name])
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	return tmpl.Execute(w, data)
}

func main() {
	endpointID := flag.String("endpoint", "", "Endpoint ID from the registry (e.g., sales-kpi)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated handler")
	registryPath := flag.String("registry", "pkg/registry/endpoints.json", "Path to the endpoint registry JSON file")
	flag.Parse()

	if *endpointID == "" {
		fmt.Println("Usage: worker-generator --endpoint <id> --output <dir> [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --endpoint sales-kpi")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	endpoint, ok := reg.Find(*endpointID)
	if !ok {
		fmt.Printf("Endpoint '%s' not found in registry %s\n", *endpointID, *registryPath)
		os.Exit(1)
	}

	data := newWorkerData(endpoint)
	workerDir := filepath.Join(*outputDir, strings.ToLower(data.Category), endpoint.ID)
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	for filename := range templates {
		filePath := filepath.Join(workerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}
		if err := render(file, filename, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("Generated %s\n", filePath)
	}

	fmt.Printf("\nHandler scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement Execute in handler.go\n")
	fmt.Printf("  2. Extend handler_test.go\n")
	fmt.Printf("  3. Mount the handler in internal/httpapi/router.go\n")
	fmt.Printf("  4. Construct it in cmd/dashboard/main.go\n")
}
