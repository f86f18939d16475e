// Package datamodel provides:
//
// - Schema-driven validation and coercion of untyped input (maps, JSON, YAML)
//   into strongly typed model instances
// - A stable error model via Issues (dot path, code, message) that aggregates
//   every structural failure of one pass into a single report
// - Per-type serializer/deserializer registries with process-wide defaults and
//   per-model overrides
// - User validation hooks (field- and model-level, before/after coercion) and
//   an explicit two-phase Begin/Resolve pipeline for hooks that suspend
//
// Design policy:
// - Keep the public API in the root package; JSON wire plumbing lives under
//   internal/, optional converters under codec/.
// - Model types are declared with NewModel and compiled by Registry.Register;
//   schemas are immutable after registration and safe for concurrent reads.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	product := datamodel.NewModel("Product").
//		Field("id", datamodel.Int()).
//		Field("name", datamodel.Str()).
//		Field("price", datamodel.Float()).
//		Field("in_stock", datamodel.Bool()).Default(true).
//		Done()
//
//	reg := datamodel.NewRegistry()
//	if err := reg.Register(product); err != nil { ... }
//
//	inst, err := reg.MustModel("Product").FromJSON(ctx, data)
//	if iss, ok := datamodel.AsIssues(err); ok {
//		for path, msg := range iss.Map() { ... }
//	}
package datamodel
