package datamodel_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	datamodel "github.com/syntropo/datamodel"
	"github.com/google/go-cmp/cmp"
)

func TestFromJSON_RoundTrip(t *testing.T) {
	reg := newFixtureRegistry(t)
	ctx := context.Background()

	src := []byte(`{"id": 1, "name": "Dave", "active": true,
		"address": {"street": "123 Main St", "zipcode": 12345},
		"age": 30}`)
	inst, err := reg.MustModel("Person").FromJSON(ctx, src)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	out, err := inst.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := reg.MustModel("Person").FromJSON(ctx, out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if diff := cmp.Diff(mustDict(t, inst), mustDict(t, back)); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestFromJSON_NumbersDecodeByShape(t *testing.T) {
	reg := newFixtureRegistry(t)
	inst, err := reg.MustModel("Product").FromJSON(context.Background(),
		[]byte(`{"id": 7, "name": "Widget", "price": 10}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	// Whole JSON numbers arrive as integers; the float field widens its own.
	if got := inst.MustGet("id"); got != int64(7) {
		t.Fatalf("id = %v (%T)", got, got)
	}
	if got := inst.MustGet("price"); got != float64(10) {
		t.Fatalf("price = %v (%T)", got, got)
	}
}

func TestFromJSON_ParseError(t *testing.T) {
	reg := newFixtureRegistry(t)
	_, err := reg.MustModel("Product").FromJSON(context.Background(), []byte(`{"id":`))
	iss, ok := datamodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T", err)
	}
	if iss[0].Code != datamodel.CodeParseError {
		t.Fatalf("code = %q", iss[0].Code)
	}
}

func TestFromJSON_NonObjectRoot(t *testing.T) {
	reg := newFixtureRegistry(t)
	_, err := reg.MustModel("Product").FromJSON(context.Background(), []byte(`[1, 2]`))
	iss, ok := datamodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T", err)
	}
	if !strings.Contains(iss[0].Message, "Expected a dict, got list") {
		t.Fatalf("message = %q", iss[0].Message)
	}
}

func TestFromJSONReader(t *testing.T) {
	reg := newFixtureRegistry(t)
	r := strings.NewReader(`{"id": 1, "name": "Widget", "price": 9.99}`)
	inst, err := reg.MustModel("Product").FromJSONReader(context.Background(), r)
	if err != nil {
		t.Fatalf("FromJSONReader: %v", err)
	}
	if inst.MustGet("name") != "Widget" {
		t.Fatalf("name = %v", inst.MustGet("name"))
	}
}

func TestToJSON_DeclarationOrderKeys(t *testing.T) {
	reg := newFixtureRegistry(t)
	inst, err := reg.MustModel("Product").FromDict(context.Background(), validProduct())
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	out, err := inst.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	s := string(out)
	order := []string{`"id"`, `"name"`, `"price"`, `"in_stock"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("missing %s in %s", key, s)
		}
		if idx < last {
			t.Fatalf("key %s out of declaration order in %s", key, s)
		}
		last = idx
	}
}

func TestToJSON_NestedObjectsKeepOrder(t *testing.T) {
	reg := newFixtureRegistry(t)
	inst, err := reg.MustModel("Person").FromDict(context.Background(), map[string]any{
		"id": 1, "name": "Dave", "active": true,
		"address": validAddress(), "age": 30,
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	out, err := inst.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	s := string(out)
	if strings.Index(s, `"street"`) > strings.Index(s, `"zipcode"`) {
		t.Fatalf("nested keys out of order: %s", s)
	}
	if !strings.Contains(s, `"notes":null`) {
		t.Fatalf("optional nil must encode as null: %s", s)
	}
}

func TestToJSON_TimeEncodesRFC3339(t *testing.T) {
	event := datamodel.NewModel("Event").
		Field("name", datamodel.Str()).
		Field("at", datamodel.Time()).
		Done()
	reg := datamodel.NewRegistry()
	if err := reg.Register(event); err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()

	stamp := time.Date(2024, 5, 17, 8, 30, 0, 0, time.UTC)
	inst, err := reg.MustModel("Event").FromDict(ctx, map[string]any{
		"name": "launch", "at": stamp,
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	out, err := inst.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(string(out), `"2024-05-17T08:30:00Z"`) {
		t.Fatalf("time encoding = %s", out)
	}

	// Strings parse back into times through the registered deserializer.
	back, err := reg.MustModel("Event").FromJSON(ctx, out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if !back.MustGet("at").(time.Time).Equal(stamp) {
		t.Fatalf("at = %v", back.MustGet("at"))
	}
}

func TestJSON_BytesRoundTrip(t *testing.T) {
	blob := datamodel.NewModel("Blob").
		Field("name", datamodel.Str()).
		Field("payload", datamodel.Bytes()).
		Done()
	reg := datamodel.NewRegistry()
	if err := reg.Register(blob); err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()

	inst, err := reg.MustModel("Blob").FromDict(ctx, map[string]any{
		"name": "greeting", "payload": []byte("hello"),
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	out, err := inst.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(string(out), `"aGVsbG8="`) {
		t.Fatalf("payload encoding = %s", out)
	}

	back, err := reg.MustModel("Blob").FromJSON(ctx, out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if !bytes.Equal(back.MustGet("payload").([]byte), []byte("hello")) {
		t.Fatalf("payload = %v", back.MustGet("payload"))
	}

	// Base64 text converts on the map path too.
	direct, err := reg.MustModel("Blob").FromDict(ctx, map[string]any{
		"name": "greeting", "payload": "aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("from base64 string: %v", err)
	}
	if !bytes.Equal(direct.MustGet("payload").([]byte), []byte("hello")) {
		t.Fatalf("payload = %v", direct.MustGet("payload"))
	}
}

func TestToJSON_SetEncodesAsArray(t *testing.T) {
	tags := datamodel.NewModel("Tags").
		Field("tags", datamodel.SetOf(datamodel.Str())).
		Done()
	reg := datamodel.NewRegistry()
	if err := reg.Register(tags); err != nil {
		t.Fatalf("register: %v", err)
	}

	inst, err := reg.MustModel("Tags").FromDict(context.Background(), map[string]any{
		"tags": []any{"b", "a", "b"},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	out, err := inst.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if string(out) != `{"tags":["b","a"]}` {
		t.Fatalf("out = %s", out)
	}
}
