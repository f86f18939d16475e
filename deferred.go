package datamodel

import (
	"context"
	"errors"
	"sync"
)

// ResolveState is the lifecycle of a two-phase construction.
type ResolveState int

const (
	StateUnresolved ResolveState = iota
	StateResolving
	StateResolved
	StateFailed
)

func (s ResolveState) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	}
	return "<unknown>"
}

// Deferred is an inert, not-yet-valid capture of construction input. Begin is
// phase 1: it stores the raw fields without running any validation. Resolve
// is phase 2: it runs the async hooks around the synchronous pipeline and
// yields the usable instance. Resolved and Failed are terminal; resolving
// again returns the cached outcome without re-running hooks.
type Deferred struct {
	mt *ModelType

	mu    sync.Mutex
	state ResolveState
	input map[string]any
	inst  *Instance
	err   error
}

// Begin captures raw construction input for later resolution. No hooks run
// and nothing is validated until Resolve.
func (mt *ModelType) Begin(fields map[string]any) *Deferred {
	input := make(map[string]any, len(fields))
	for k, v := range fields {
		input[k] = v
	}
	return &Deferred{mt: mt, state: StateUnresolved, input: input}
}

// State reports the current lifecycle state.
func (d *Deferred) State() ResolveState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// errResolveInProgress reports a Resolve racing or re-entering an unfinished
// Resolve on the same deferred.
var errResolveInProgress = errors.New("resolve already in progress")

// Resolve completes construction: async model-before hooks, async field-
// before hooks (declaration order), the synchronous pipeline (sync hooks,
// alias/default resolution, structural validation), async field-after hooks,
// async model-after hooks. Suspension points are exactly the awaited hook
// invocations; ctx cancellation is observed before each one and leaves the
// deferred Failed, never partially Resolved. Resolve is idempotent. The lock
// is not held while hooks run, so a Resolve that overlaps an unfinished one —
// concurrently or re-entrantly from inside a hook — fails with
// errResolveInProgress instead of blocking.
func (d *Deferred) Resolve(ctx context.Context) (*Instance, error) {
	d.mu.Lock()
	switch d.state {
	case StateResolved:
		inst := d.inst
		d.mu.Unlock()
		return inst, nil
	case StateFailed:
		err := d.err
		d.mu.Unlock()
		return nil, err
	case StateResolving:
		d.mu.Unlock()
		return nil, &HookError{Stage: "resolve", Err: errResolveInProgress}
	}
	d.state = StateResolving
	input := d.input
	d.mu.Unlock()

	inst, err := d.resolve(ctx, input)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = StateFailed
		d.err = err
		return nil, err
	}
	d.state = StateResolved
	d.inst = inst
	d.input = nil
	return inst, nil
}

func (d *Deferred) resolve(ctx context.Context, data map[string]any) (*Instance, error) {
	mt := d.mt

	for _, hook := range mt.hooks.asyncModelBefore {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		patch, err := hook(ctx, data)
		if err != nil {
			return nil, &HookError{Stage: "model-before", Err: err}
		}
		for k, v := range patch {
			data[k] = v
		}
	}

	for _, fs := range mt.schema.fields {
		hooks := mt.hooks.asyncFieldBefore[fs.Name]
		if len(hooks) == 0 {
			continue
		}
		raw, ok := data[fs.Name]
		if !ok {
			continue
		}
		for _, hook := range hooks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			next, err := hook(ctx, raw)
			if err != nil {
				return nil, &HookError{Stage: "field-before", Field: fs.Name, Err: err}
			}
			raw = next
		}
		data[fs.Name] = raw
	}

	// structural validation never suspends
	inst, err := mt.construct(ctx, data)
	if err != nil {
		return nil, err
	}

	for _, fs := range mt.schema.fields {
		hooks := mt.hooks.asyncFieldAfter[fs.Name]
		if len(hooks) == 0 {
			continue
		}
		v := inst.fields[fs.Name]
		for _, hook := range hooks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			next, err := hook(ctx, v)
			if err != nil {
				return nil, &HookError{Stage: "field-after", Field: fs.Name, Err: err}
			}
			v = next
		}
		acol := &collector{}
		conv, ok := validateNode(ctx, fs.Type, v, fs.Name, acol, &mt.config)
		if !ok {
			return nil, acol.iss
		}
		inst.fields[fs.Name] = conv
	}

	for _, hook := range mt.hooks.asyncModelAfter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := hook(ctx, inst); err != nil {
			return nil, &HookError{Stage: "model-after", Err: err}
		}
	}
	return inst, nil
}
