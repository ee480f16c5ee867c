// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kpi-dashboard/pkg/registry"
)

const defaultRegistryPath = "pkg/registry/endpoints.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	// Add command flags
	addPath := addCmd.String("path", defaultRegistryPath, "Path to registry file")
	idAdd := addCmd.String("id", "", "Endpoint ID (e.g., sales-kpi)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Sales KPI)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (kpi, tasks, system)")
	method := addCmd.String("method", "GET", "HTTP method")
	path := addCmd.String("route", "", "Route (e.g., /api/kpi/sales)")
	taskType := addCmd.String("taskType", "", "Handler task type (e.g., sales-kpi)")
	timeout := addCmd.String("timeout", "30s", "Request timeout")

	// Update command flags
	updatePath := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Endpoint ID to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, method, route, timeout, tags)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")
	listPath := listCmd.String("path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *category == "" || *path == "" || *taskType == "" {
			fmt.Println("Error: id, displayName, category, route, and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		endpoint := registry.Endpoint{
			ID:          *idAdd,
			DisplayName: *displayName,
			Description: *description,
			Category:    *category,
			Method:      strings.ToUpper(*method),
			Path:        *path,
			TaskType:    *taskType,
			ErrorCodes:  []string{},
			Timeout:     *timeout,
			Tags:        []string{},
		}
		if err := addEndpoint(*addPath, &endpoint); err != nil {
			fmt.Printf("Error adding endpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added endpoint: %s %s (%s)\n", endpoint.Method, endpoint.Path, endpoint.ID)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateEndpoint(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating endpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated endpoint %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Failed to load registry: %v\n", err)
			os.Exit(1)
		}
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d endpoints.\n", len(reg.Endpoints))

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*listPath)
		if err != nil {
			fmt.Printf("Failed to load registry: %v\n", err)
			os.Exit(1)
		}
		for i := range reg.Endpoints {
			fmt.Println(reg.Endpoints[i].Summary())
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func addEndpoint(path string, endpoint *registry.Endpoint) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.EndpointRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.Find(endpoint.ID); exists {
		return fmt.Errorf("endpoint with ID %s already exists", endpoint.ID)
	}

	reg.Endpoints = append(reg.Endpoints, *endpoint)
	return saveRegistry(reg, path)
}

func updateEndpoint(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	endpoint, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("endpoint with ID %s not found", id)
	}

	switch field {
	case "displayName":
		endpoint.DisplayName = value
	case "description":
		endpoint.Description = value
	case "category":
		endpoint.Category = value
	case "method":
		endpoint.Method = strings.ToUpper(value)
	case "route":
		endpoint.Path = value
	case "taskType":
		endpoint.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		endpoint.Timeout = value
	case "tags":
		endpoint.Tags = strings.Split(value, ",")
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	return saveRegistry(reg, path)
}

// saveRegistry refuses to write a catalogue that would fail to load at startup.
func saveRegistry(reg *registry.EndpointRegistry, path string) error {
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	if err := reg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new endpoint to the catalogue
  update   Update an existing endpoint's field
  validate Validate the catalogue and compile its schemas
  list     Print one line per endpoint
  help     Show this help message

Examples:
  registry-updater add -id sales-kpi -displayName "Sales KPI" -category kpi -route /api/kpi/sales -taskType sales-kpi
  registry-updater update -id sales-kpi -field timeout -value 45s
  registry-updater validate -path pkg/registry/endpoints.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
