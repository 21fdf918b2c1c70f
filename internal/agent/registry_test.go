package agent

import (
	"errors"
	"testing"
)

func TestDefaultRegistryLookup(t *testing.T) {
	r := Default()
	for _, typ := range []Type{TypeRouter, TypePlanner, TypeReact} {
		if _, err := r.Lookup(typ); err != nil {
			t.Errorf("Lookup(%s): %v", typ, err)
		}
	}
}

func TestLookupUnknownType(t *testing.T) {
	r := Default()
	_, err := r.Lookup(Type(42))
	if !errors.Is(err, ErrUnknownAgentType) {
		t.Fatalf("err = %v; want ErrUnknownAgentType", err)
	}
}

func TestRegisterOverride(t *testing.T) {
	r := Default()
	override := &ReactHandler{}
	r.Register(TypeRouter, override)
	h, err := r.Lookup(TypeRouter)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if h != Handler(override) {
		t.Fatal("expected the overriding handler")
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeRouter, "router"},
		{TypePlanner, "planner"},
		{TypeReact, "react"},
		{Type(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q; want %q", int(tt.typ), got, tt.want)
		}
	}
}
