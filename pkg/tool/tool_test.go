package tool_test

import (
	"context"
	"encoding/json"
	"testing"

	jsonschema "github.com/google/jsonschema-go/jsonschema"
	tool "github.com/mutablelogic/go-divyavaani/pkg/tool"
)

type stubTool struct {
	name   string
	schema *jsonschema.Schema
	ran    json.RawMessage
}

func (s *stubTool) Name() string                        { return s.name }
func (s *stubTool) Description() string                 { return "stub" }
func (s *stubTool) Schema() (*jsonschema.Schema, error) { return s.schema, nil }
func (s *stubTool) Run(_ context.Context, input json.RawMessage) (any, error) {
	s.ran = input
	return map[string]string{"ok": "yes"}, nil
}

func TestRegister_NormalToolOK(t *testing.T) {
	tk, err := tool.NewToolkit()
	if err != nil {
		t.Fatal(err)
	}
	if err := tk.Register(&stubTool{name: "ask"}); err != nil {
		t.Fatal("normal tool should register:", err)
	}
	if tk.Lookup("ask") == nil {
		t.Fatal("registered tool should be found by name")
	}
}

func TestRegister_InvalidName(t *testing.T) {
	tk, _ := tool.NewToolkit()
	if err := tk.Register(&stubTool{name: "not a name"}); err == nil {
		t.Fatal("expected error for invalid tool name")
	}
	if err := tk.Register(&stubTool{name: ""}); err == nil {
		t.Fatal("expected error for empty tool name")
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	tk, _ := tool.NewToolkit(&stubTool{name: "ask"})
	if err := tk.Register(&stubTool{name: "ask"}); err == nil {
		t.Fatal("expected error for duplicate tool name")
	}
}

func TestTools_SortedByName(t *testing.T) {
	tk, err := tool.NewToolkit(
		&stubTool{name: "health"},
		&stubTool{name: "ask"},
		&stubTool{name: "submit_feedback"},
	)
	if err != nil {
		t.Fatal(err)
	}
	tools := tk.Tools()
	if len(tools) != 3 {
		t.Fatal("expected three tools, got", len(tools))
	}
	for i, name := range []string{"ask", "health", "submit_feedback"} {
		if tools[i].Name() != name {
			t.Fatalf("expected %q at position %d, got %q", name, i, tools[i].Name())
		}
	}
}

func TestDefinitions(t *testing.T) {
	schema, err := jsonschema.For[struct {
		Question string `json:"question"`
	}](nil)
	if err != nil {
		t.Fatal(err)
	}
	tk, _ := tool.NewToolkit(&stubTool{name: "ask", schema: schema})

	defs, err := tk.Definitions()
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 {
		t.Fatal("expected one definition, got", len(defs))
	}
	if defs[0].Name != "ask" || defs[0].Description != "stub" {
		t.Fatalf("unexpected definition: %v", defs[0])
	}
	if defs[0].InputSchema == nil {
		t.Fatal("expected an input schema")
	}
}

func TestRun_NotFound(t *testing.T) {
	tk, _ := tool.NewToolkit()
	if _, err := tk.Run(context.Background(), "missing", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRun_NilInput(t *testing.T) {
	stub := &stubTool{name: "health"}
	tk, _ := tool.NewToolkit(stub)
	result, err := tk.Run(context.Background(), "health", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
}

func TestRun_ValidatesInput(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"question": {Type: "string"},
		},
		Required: []string{"question"},
	}

	stub := &stubTool{name: "ask", schema: schema}
	tk, _ := tool.NewToolkit(stub)

	if _, err := tk.Run(context.Background(), "ask", json.RawMessage(`{"question":"What is karma?"}`)); err != nil {
		t.Fatal("valid input should pass:", err)
	}
	if _, err := tk.Run(context.Background(), "ask", json.RawMessage(`{"bogus":true}`)); err == nil {
		t.Fatal("expected validation error when question is missing")
	}
	if _, err := tk.Run(context.Background(), "ask", json.RawMessage(`not json`)); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestRun_MarshalsNonJSONInput(t *testing.T) {
	stub := &stubTool{name: "ask"}
	tk, _ := tool.NewToolkit(stub)

	if _, err := tk.Run(context.Background(), "ask", map[string]string{"question": "What is dharma?"}); err != nil {
		t.Fatal(err)
	}
	if len(stub.ran) == 0 {
		t.Fatal("expected the tool to receive marshalled input")
	}
}
