package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-dashboard/pkg/registry"
)

func TestGoTypeFromJSONType(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"string", "string"},
		{"number", "float64"},
		{"integer", "int"},
		{"boolean", "bool"},
		{[]interface{}{"string", "null"}, "*string"},
		{[]interface{}{"null"}, "interface{}"},
		{nil, "interface{}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, goTypeFromJSONType(tt.in), "%v", tt.in)
	}
}

func TestGenerateStructFields_Sorted(t *testing.T) {
	fields := generateStructFields(map[string]interface{}{
		"title":   map[string]interface{}{"type": "string", "description": "Task title"},
		"dueDate": map[string]interface{}{"type": []interface{}{"string", "null"}},
	})
	assert.Equal(t, "\tDueDate *string `json:\"dueDate\"`\n\tTitle string `json:\"title\"` // Task title", fields)
}

func TestRender_FromDefaultRegistry(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	endpoint, ok := reg.Find("task-create")
	require.True(t, ok)
	data := newWorkerData(endpoint)
	assert.Equal(t, "taskcreate", data.PackageName)
	assert.True(t, data.HasBody)

	for name := range templates {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, name, data), name)
		assert.Contains(t, buf.String(), "package taskcreate", name)
	}

	var test bytes.Buffer
	require.NoError(t, render(&test, "handler_test.go", data))
	assert.Contains(t, test.String(), "http.MethodPost")
	assert.Contains(t, test.String(), `"strings"`)
}
