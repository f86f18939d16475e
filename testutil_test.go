package datamodel_test

import (
	"testing"

	datamodel "github.com/syntropo/datamodel"
)

// newFixtureRegistry compiles the model set shared across tests: a flat
// product, an address with a union-typed zipcode, and a composite model
// exercising containers, optionals, and class attributes.
func newFixtureRegistry(t *testing.T) *datamodel.Registry {
	t.Helper()

	address := datamodel.NewModel("Address").
		Field("street", datamodel.Str()).
		Field("zipcode", datamodel.UnionOf(datamodel.Int(), datamodel.Str())).
		Field("country", datamodel.Str()).Default("USA").
		Done()

	product := datamodel.NewModel("Product").
		Field("id", datamodel.Int()).
		Field("name", datamodel.Str()).
		Field("price", datamodel.Float()).
		Field("in_stock", datamodel.Bool()).Default(true).
		Done()

	person := datamodel.NewModel("Person").
		Field("id", datamodel.Int()).
		Field("name", datamodel.Str()).
		Field("active", datamodel.Bool()).
		Field("address", datamodel.Ref("Address")).
		Field("age", datamodel.Int()).
		Field("notes", datamodel.OptionalOf(datamodel.Str())).
		Done()

	complexModel := datamodel.NewModel("Complex").
		ClassAttr("MAX_ITEMS", datamodel.Int(), 100).
		ClassAttr("TIMEOUT", datamodel.Float(), 5.0).
		Field("id", datamodel.UnionOf(datamodel.Int(), datamodel.Str())).
		Field("metadata", datamodel.DictOf(datamodel.Str(), datamodel.Any())).
		Field("products", datamodel.ListOf(datamodel.Ref("Product"))).
		Field("address", datamodel.OptionalOf(datamodel.Ref("Address"))).
		Field("history", datamodel.ListOf(datamodel.UnionOf(datamodel.Int(), datamodel.DictOf(datamodel.Str(), datamodel.Float())))).
		DefaultFactory(func() any { return []any{} }).
		Done()

	reg := datamodel.NewRegistry()
	if err := reg.Register(address, product, person, complexModel); err != nil {
		t.Fatalf("fixture registration failed: %v", err)
	}
	return reg
}

func validAddress() map[string]any {
	return map[string]any{"street": "123 Main St", "zipcode": 12345}
}

func validProduct() map[string]any {
	return map[string]any{"id": 1, "name": "Widget", "price": 9.99}
}

// mustDict exports an instance as a mapping or fails the test.
func mustDict(t *testing.T, inst *datamodel.Instance) map[string]any {
	t.Helper()
	m, err := inst.ToDict()
	if err != nil {
		t.Fatalf("ToDict: %v", err)
	}
	return m
}

// errMap extracts the aggregated path -> message report or fails the test.
func errMap(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an aggregated error, got nil")
	}
	iss, ok := datamodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	return iss.Map()
}
