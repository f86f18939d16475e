package datamodel

import "context"

// FieldHook adjusts one field's value. Before-hooks see the raw input value,
// after-hooks see the typed, validated value. The returned value feeds the
// next hook in declaration order.
type FieldHook func(ctx context.Context, value any) (any, error)

// ModelBeforeHook adjusts the whole raw input mapping before field resolution.
// A non-nil returned map is merged into the input (returned keys win).
type ModelBeforeHook func(ctx context.Context, data map[string]any) (map[string]any, error)

// ModelAfterHook runs against the constructed instance and may mutate it.
type ModelAfterHook func(ctx context.Context, inst *Instance) error

// hookTable is the static per-type hook registration gathered at build time.
// Hooks of the same category run in registration order.
type hookTable struct {
	modelBefore []ModelBeforeHook
	modelAfter  []ModelAfterHook
	fieldBefore map[string][]FieldHook
	fieldAfter  map[string][]FieldHook

	asyncModelBefore []ModelBeforeHook
	asyncModelAfter  []ModelAfterHook
	asyncFieldBefore map[string][]FieldHook
	asyncFieldAfter  map[string][]FieldHook
}

// fieldHookNames returns every field name referenced by a field hook, for
// build-time signature validation.
func (h *hookTable) fieldHookNames() []string {
	var out []string
	for _, m := range []map[string][]FieldHook{h.fieldBefore, h.fieldAfter, h.asyncFieldBefore, h.asyncFieldAfter} {
		for name := range m {
			out = append(out, name)
		}
	}
	return out
}
