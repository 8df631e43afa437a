package schema

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

const sample = `
enums:
  - name: Status
    values:
      - {name: UNKNOWN, number: 0}
      - {name: ACTIVE, number: 1}
messages:
  - name: Outer
    fields:
      - {name: items, number: 1, type: Inner, repeated: true}
      - {name: number, number: 2, type: int32}
      - {name: status, number: 3, type: Status}
      - {name: text, number: 4, type: string, oneof: payload}
      - {name: raw, number: 5, type: bytes, oneof: payload}
    oneofs: [payload]
  - name: Inner
    fields:
      - {name: text, number: 1, type: string}
      - {name: number, number: 2, type: uint32}
      - {name: child, number: 3, type: Inner}
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	outer, err := set.Message("Outer")
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	inner, err := set.Message("Inner")
	if err != nil {
		t.Fatalf("Message: %v", err)
	}

	tests := []struct {
		field    string
		kind     wire.Kind
		repeated bool
		oneof    string
	}{
		{"items", wire.KindMessage, true, ""},
		{"number", wire.KindInt32, false, ""},
		{"status", wire.KindEnum, false, ""},
		{"text", wire.KindString, false, "payload"},
		{"raw", wire.KindBytes, false, "payload"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := outer.FieldByName(tt.field)
			if f == nil {
				t.Fatalf("field %q missing", tt.field)
			}
			if f.Kind != tt.kind || f.Repeated != tt.repeated || f.Oneof != tt.oneof {
				t.Errorf("got kind=%v repeated=%v oneof=%q", f.Kind, f.Repeated, f.Oneof)
			}
		})
	}

	if outer.FieldByName("items").Message != inner {
		t.Error("items should reference the Inner descriptor")
	}
	if inner.FieldByName("child").Message != inner {
		t.Error("recursive reference should resolve to the same descriptor")
	}
	status := outer.FieldByName("status").Enum
	if status == nil {
		t.Fatal("status enum not resolved")
	}
	if name, ok := status.ValueName(1); !ok || name != "ACTIVE" {
		t.Errorf("ValueName(1) = %q, %v", name, ok)
	}
	if len(outer.Members("payload")) != 2 {
		t.Errorf("payload members = %d, want 2", len(outer.Members("payload")))
	}
}

func TestSetLookups(t *testing.T) {
	set, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	names := set.Messages()
	if len(names) != 2 || names[0] != "Inner" || names[1] != "Outer" {
		t.Errorf("Messages() = %v", names)
	}

	if _, err := set.Enum("Status"); err != nil {
		t.Errorf("Enum: %v", err)
	}

	_, err = set.Message("Missing")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindNotFound}) {
		t.Errorf("Message(Missing) error = %v", err)
	}
	_, err = set.Enum("Missing")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindNotFound}) {
		t.Errorf("Enum(Missing) error = %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		phase errors.Phase
		kind  errors.Kind
		count int
	}{
		{
			name:  "malformed yaml",
			input: "messages: [",
			phase: errors.PhaseParse,
			kind:  errors.KindInvalidData,
			count: 1,
		},
		{
			name:  "unknown key",
			input: "messages:\n  - name: A\n    colour: red\n",
			phase: errors.PhaseParse,
			kind:  errors.KindInvalidData,
			count: 1,
		},
		{
			name: "unknown type",
			input: `
messages:
  - name: A
    fields:
      - {name: x, number: 1, type: Nope}
`,
			phase: errors.PhaseCompile,
			kind:  errors.KindSchemaMismatch,
			count: 1,
		},
		{
			name: "every bad field reported",
			input: `
messages:
  - name: A
    fields:
      - {name: x, number: 1, type: Nope}
      - {name: y, number: 2}
  - name: B
    fields:
      - {name: z, number: 1, type: Missing}
`,
			phase: errors.PhaseCompile,
			kind:  errors.KindSchemaMismatch,
			count: 3,
		},
		{
			name: "duplicate number",
			input: `
messages:
  - name: A
    fields:
      - {name: x, number: 1, type: int32}
      - {name: y, number: 1, type: int32}
`,
			phase: errors.PhaseCompile,
			kind:  errors.KindSchemaMismatch,
			count: 1,
		},
		{
			name: "type declared twice",
			input: `
enums:
  - name: A
messages:
  - name: A
`,
			phase: errors.PhaseCompile,
			kind:  errors.KindSchemaMismatch,
			count: 1,
		},
		{
			name:  "unnamed message",
			input: "messages:\n  - fields: []\n",
			phase: errors.PhaseCompile,
			kind:  errors.KindInvalidInput,
			count: 1,
		},
		{
			name: "unknown oneof",
			input: `
messages:
  - name: A
    fields:
      - {name: x, number: 1, type: int32, oneof: nope}
`,
			phase: errors.PhaseCompile,
			kind:  errors.KindSchemaMismatch,
			count: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			errs := multierr.Errors(err)
			if len(errs) != tt.count {
				t.Fatalf("got %d errors, want %d: %v", len(errs), tt.count, err)
			}
			if !stderrors.Is(errs[0], &errors.Error{Phase: tt.phase, Kind: tt.kind}) {
				t.Errorf("first error = %v, want %s/%s", errs[0], tt.phase, tt.kind)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	set, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if len(set.Messages()) != 0 {
		t.Errorf("expected no messages, got %v", set.Messages())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := set.Message("Outer"); err != nil {
		t.Error(err)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}) {
		t.Errorf("missing file error = %v", err)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("missing file error should wrap os.ErrNotExist")
	}
}
