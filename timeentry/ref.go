package timeentry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Ref is a project or task reference that arrives either as a bare id or as
// a resolved object with an id and a name. Callers use Display/Resolve
// instead of inspecting the wire form.
type Ref struct {
	ID       string
	Name     string
	Resolved bool
}

// RefID returns an unresolved reference holding only an identifier.
func RefID(id string) Ref {
	return Ref{ID: strings.TrimSpace(id)}
}

// RefNamed returns a resolved reference.
func RefNamed(id, name string) Ref {
	return Ref{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name), Resolved: true}
}

// IsZero reports whether the reference is absent entirely.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// Display returns the resolved name when known and the bare id otherwise.
// An absent reference yields the empty string.
func (r Ref) Display() string {
	if r.Resolved && r.Name != "" {
		return r.Name
	}
	return r.ID
}

type refObject struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	if !r.Resolved {
		return json.Marshal(r.ID)
	}
	return json.Marshal(refObject{ID: r.ID, Name: r.Name})
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		*r = Ref{}
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = RefID(id)
		return nil
	}

	var obj refObject
	if err := json.Unmarshal(data, &obj); err == nil {
		if strings.TrimSpace(obj.Name) == "" {
			*r = RefID(obj.ID)
			return nil
		}
		*r = RefNamed(obj.ID, obj.Name)
		return nil
	}

	return fmt.Errorf("unsupported reference value %q", text)
}
