package datamodel_test

import (
	"context"
	"errors"
	"testing"

	datamodel "github.com/syntropo/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asyncModel(t *testing.T, trace *[]string) *datamodel.Registry {
	t.Helper()
	b := datamodel.NewModel("Account").
		Field("email", datamodel.Str()).
		Field("verified", datamodel.Bool()).Default(false).
		Done()
	b.AsyncBeforeModel(func(ctx context.Context, data map[string]any) (map[string]any, error) {
		*trace = append(*trace, "async-model-before")
		return nil, nil
	})
	b.AsyncBeforeField("email", func(ctx context.Context, v any) (any, error) {
		*trace = append(*trace, "async-field-before")
		return v, nil
	})
	b.BeforeModel(func(ctx context.Context, data map[string]any) (map[string]any, error) {
		*trace = append(*trace, "sync-model-before")
		return nil, nil
	})
	b.AsyncAfterField("email", func(ctx context.Context, v any) (any, error) {
		*trace = append(*trace, "async-field-after")
		return v, nil
	})
	b.AsyncAfterModel(func(ctx context.Context, inst *datamodel.Instance) error {
		*trace = append(*trace, "async-model-after")
		return nil
	})
	reg := datamodel.NewRegistry()
	require.NoError(t, reg.Register(b))
	return reg
}

func TestDeferred_BeginRunsNothing(t *testing.T) {
	var trace []string
	reg := asyncModel(t, &trace)

	d := reg.MustModel("Account").Begin(map[string]any{})
	assert.Equal(t, datamodel.StateUnresolved, d.State())
	assert.Empty(t, trace, "Begin must not run hooks or validation")
}

func TestDeferred_ResolveRunsPhasesInOrder(t *testing.T) {
	var trace []string
	reg := asyncModel(t, &trace)

	d := reg.MustModel("Account").Begin(map[string]any{"email": "a@b.c"})
	inst, err := d.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, datamodel.StateResolved, d.State())
	assert.Equal(t, "a@b.c", inst.MustGet("email"))
	assert.Equal(t, false, inst.MustGet("verified"))
	assert.Equal(t, []string{
		"async-model-before",
		"async-field-before",
		"sync-model-before",
		"async-field-after",
		"async-model-after",
	}, trace)
}

func TestDeferred_ResolveIsIdempotent(t *testing.T) {
	var trace []string
	reg := asyncModel(t, &trace)
	ctx := context.Background()

	d := reg.MustModel("Account").Begin(map[string]any{"email": "a@b.c"})
	first, err := d.Resolve(ctx)
	require.NoError(t, err)
	n := len(trace)

	second, err := d.Resolve(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, trace, n, "second Resolve must not re-run hooks")
}

func TestDeferred_ValidationFailureIsTerminal(t *testing.T) {
	var trace []string
	reg := asyncModel(t, &trace)
	ctx := context.Background()

	d := reg.MustModel("Account").Begin(map[string]any{"email": 42})
	_, err := d.Resolve(ctx)
	iss, ok := datamodel.AsIssues(err)
	require.True(t, ok, "want Issues, got %T", err)
	assert.Equal(t, "email", iss[0].Path)
	assert.Equal(t, datamodel.StateFailed, d.State())

	_, err2 := d.Resolve(ctx)
	assert.Equal(t, err, err2, "failed deferreds return the cached error")
}

func TestDeferred_AsyncHookFailure(t *testing.T) {
	boom := errors.New("lookup failed")
	b := datamodel.NewModel("Remote").
		Field("id", datamodel.Int()).
		Done()
	b.AsyncAfterModel(func(ctx context.Context, inst *datamodel.Instance) error {
		return boom
	})
	reg := datamodel.NewRegistry()
	require.NoError(t, reg.Register(b))

	d := reg.MustModel("Remote").Begin(map[string]any{"id": 1})
	_, err := d.Resolve(context.Background())
	he, ok := datamodel.AsHookError(err)
	require.True(t, ok)
	assert.Equal(t, "model-after", he.Stage)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, datamodel.StateFailed, d.State())
}

func TestDeferred_ContextCancellation(t *testing.T) {
	b := datamodel.NewModel("Slow").
		Field("id", datamodel.Int()).
		Done()
	b.AsyncBeforeModel(func(ctx context.Context, data map[string]any) (map[string]any, error) {
		return nil, nil
	})
	reg := datamodel.NewRegistry()
	require.NoError(t, reg.Register(b))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := reg.MustModel("Slow").Begin(map[string]any{"id": 1})
	_, err := d.Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, datamodel.StateFailed, d.State())
}

func TestDeferred_ReentrantResolveFails(t *testing.T) {
	// Resolving the same deferred from inside one of its own hooks must error
	// out, not deadlock.
	var d *datamodel.Deferred
	b := datamodel.NewModel("Loop").
		Field("id", datamodel.Int()).
		Done()
	b.AsyncBeforeModel(func(ctx context.Context, data map[string]any) (map[string]any, error) {
		_, err := d.Resolve(ctx)
		return nil, err
	})
	reg := datamodel.NewRegistry()
	require.NoError(t, reg.Register(b))

	d = reg.MustModel("Loop").Begin(map[string]any{"id": 1})
	_, err := d.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve already in progress")
	assert.Equal(t, datamodel.StateFailed, d.State())
}

func TestDeferred_SyncHooksStillRun(t *testing.T) {
	// A model with only synchronous hooks resolves through the same pipeline.
	var ran bool
	b := datamodel.NewModel("Plain").
		Field("id", datamodel.Int()).
		Done()
	b.AfterModel(func(ctx context.Context, inst *datamodel.Instance) error {
		ran = true
		return nil
	})
	reg := datamodel.NewRegistry()
	require.NoError(t, reg.Register(b))

	d := reg.MustModel("Plain").Begin(map[string]any{"id": 1})
	_, err := d.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
}
