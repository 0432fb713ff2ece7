package environment

import (
	"reflect"
	"testing"
)

func TestStackedLookup(t *testing.T) {
	vars := New()
	vars.Set("HELLO", "WORLD")
	vars.PushScope()
	if actual := vars.Get("HELLO"); actual != "WORLD" {
		t.Errorf("Expected %#v found %#v", "WORLD", actual)
	}
	vars.PopScope()
	if actual := vars.Get("HELLO"); actual != "WORLD" {
		t.Errorf("Expected %#v found %#v", "WORLD", actual)
	}
}

func TestStackValues(t *testing.T) {
	vars := New()
	vars.Set("HELLO", "WORLD")
	vars.PushScope()
	vars.Set("CHILD", "VALUE")
	expected := map[string]string{
		"HELLO": "WORLD",
		"CHILD": "VALUE",
	}
	if actual := vars.Values(); !reflect.DeepEqual(expected, actual) {
		t.Errorf("Expected %#v found %#v", expected, actual)
	}
	delete(expected, "CHILD")
	vars.PopScope()
	if actual := vars.Values(); !reflect.DeepEqual(expected, actual) {
		t.Errorf("Expected %#v found %#v", expected, actual)
	}
}

func TestParentScope(t *testing.T) {
	vars := New()
	vars.PushScope()
	if ok := vars.SetParentScope("X", "1"); !ok {
		t.Fatalf("SetParentScope failed unexpectedly")
	}
	if got := vars.Get("X"); got != "1" {
		t.Errorf("Expected %q found %q", "1", got)
	}
	vars.PopScope()
	if ok := vars.SetParentScope("Y", "1"); ok {
		t.Errorf("SetParentScope at global frame should fail")
	}
}

func TestUnsetIsTombstone(t *testing.T) {
	vars := New()
	vars.Set("X", "1")
	vars.PushScope()
	vars.Set("X", "")
	if vars.Get("X") != "" {
		t.Errorf("expected empty override to shadow parent value")
	}
	if _, ok := vars.Values()["X"]; ok {
		t.Errorf("expected Values() to omit tombstoned key")
	}
}

func TestCacheReadThrough(t *testing.T) {
	vars := New()
	vars.SetCache("FOUND_LIB", "/usr/lib")
	if got := vars.Get("FOUND_LIB"); got != "/usr/lib" {
		t.Errorf("expected cache read-through, got %q", got)
	}
	vars.Set("FOUND_LIB", "/opt/lib")
	if got := vars.Get("FOUND_LIB"); got != "/opt/lib" {
		t.Errorf("expected scope value to shadow cache, got %q", got)
	}
}
