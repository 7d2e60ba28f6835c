package timeentry

import (
	"encoding/json"
	"testing"
)

func TestRef_UnmarshalBareID(t *testing.T) {
	t.Parallel()

	var ref Ref
	if err := json.Unmarshal([]byte(`"p-204"`), &ref); err != nil {
		t.Fatalf("unmarshal bare id: %v", err)
	}
	if ref.ID != "p-204" || ref.Resolved {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.Display() != "p-204" {
		t.Fatalf("expected bare id display, got %q", ref.Display())
	}
}

func TestRef_UnmarshalObject(t *testing.T) {
	t.Parallel()

	var ref Ref
	if err := json.Unmarshal([]byte(`{"id":"p-204","name":"Website Redesign"}`), &ref); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if !ref.Resolved || ref.Name != "Website Redesign" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.Display() != "Website Redesign" {
		t.Fatalf("expected name display, got %q", ref.Display())
	}
}

func TestRef_UnmarshalNull(t *testing.T) {
	t.Parallel()

	var ref Ref
	if err := json.Unmarshal([]byte(`null`), &ref); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !ref.IsZero() {
		t.Fatalf("expected zero ref, got %+v", ref)
	}
}

func TestRef_MarshalPreservesWireForm(t *testing.T) {
	t.Parallel()

	unresolved, err := json.Marshal(RefID("p-204"))
	if err != nil {
		t.Fatalf("marshal unresolved: %v", err)
	}
	if string(unresolved) != `"p-204"` {
		t.Fatalf("expected bare string form, got %s", unresolved)
	}

	resolved, err := json.Marshal(RefNamed("p-204", "Website Redesign"))
	if err != nil {
		t.Fatalf("marshal resolved: %v", err)
	}
	if string(resolved) != `{"id":"p-204","name":"Website Redesign"}` {
		t.Fatalf("expected object form, got %s", resolved)
	}

	zero, err := json.Marshal(Ref{})
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if string(zero) != "null" {
		t.Fatalf("expected null for zero ref, got %s", zero)
	}
}

func TestRef_RejectsUnsupportedValue(t *testing.T) {
	t.Parallel()

	var ref Ref
	if err := json.Unmarshal([]byte(`42`), &ref); err == nil {
		t.Fatalf("expected error for numeric reference")
	}
}
