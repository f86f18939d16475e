package datamodel_test

import (
	"context"
	"testing"
)

func TestClassAttr_SharedAcrossInstances(t *testing.T) {
	reg := newFixtureRegistry(t)
	mt := reg.MustModel("Complex")

	if v, ok := mt.ClassAttr("MAX_ITEMS"); !ok || v != int64(100) {
		t.Fatalf("MAX_ITEMS = %v, %v", v, ok)
	}
	if v, ok := mt.ClassAttr("TIMEOUT"); !ok || v != 5.0 {
		t.Fatalf("TIMEOUT = %v, %v", v, ok)
	}

	if err := mt.SetClassAttr("MAX_ITEMS", 250); err != nil {
		t.Fatalf("set: %v", err)
	}
	// The mutation is type-level state, observed through any handle.
	if v, _ := reg.MustModel("Complex").ClassAttr("MAX_ITEMS"); v != int64(250) {
		t.Fatalf("MAX_ITEMS after set = %v", v)
	}
}

func TestClassAttr_SetValidatesType(t *testing.T) {
	reg := newFixtureRegistry(t)
	mt := reg.MustModel("Complex")

	if err := mt.SetClassAttr("MAX_ITEMS", "lots"); err == nil {
		t.Fatalf("mistyped class attribute mutation accepted")
	}
	if v, _ := mt.ClassAttr("MAX_ITEMS"); v != int64(100) {
		t.Fatalf("rejected mutation must not change the value: %v", v)
	}
}

func TestClassAttr_SetUnknownName(t *testing.T) {
	reg := newFixtureRegistry(t)
	if err := reg.MustModel("Complex").SetClassAttr("NOPE", 1); err == nil {
		t.Fatalf("unknown class attribute accepted")
	}
}

func TestClassAttr_InstanceSetRejected(t *testing.T) {
	reg := newFixtureRegistry(t)
	ctx := context.Background()

	inst, err := reg.MustModel("Complex").FromDict(ctx, map[string]any{
		"id": 1, "metadata": map[string]any{}, "products": []any{},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	err = inst.Set(ctx, "MAX_ITEMS", 1)
	m := errMap(t, err)
	if m["MAX_ITEMS"] != "Cannot set ClassVar attribute through an instance" {
		t.Fatalf("error map = %v", m)
	}
}

func TestClassAttr_NotInFieldStore(t *testing.T) {
	reg := newFixtureRegistry(t)
	inst, err := reg.MustModel("Complex").FromDict(context.Background(), map[string]any{
		"id": 1, "metadata": map[string]any{}, "products": []any{},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if _, ok := inst.Get("MAX_ITEMS"); ok {
		t.Fatalf("class attribute leaked into instance fields")
	}
	if _, ok := mustDict(t, inst)["MAX_ITEMS"]; ok {
		t.Fatalf("class attribute leaked into ToDict")
	}
}
