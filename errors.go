package datamodel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissingRequired       = "missing_required"
	CodeTypeMismatch          = "type_mismatch"
	CodeUnionNoMatch          = "union_no_match"
	CodeTupleArity            = "tuple_arity"
	CodeInvalidClassAttribute = "invalid_class_attribute" // build-time
	CodeInvalidHook           = "invalid_hook"            // build-time
	CodeDuplicateModel        = "duplicate_model"         // build-time
	CodeUnknownModel          = "unknown_model"           // build-time
	CodeInvalidField          = "invalid_field"           // build-time
	CodeHookRaised            = "hook_raised"
	CodeParseError            = "parse_error"
)

// Issue represents a single structural validation entry.
type Issue struct {
	Path    string // Dot path (for example: products.0.id). Empty at the root.
	Code    string // One of the codes listed above.
	Message string
	Hint    string         // Optional: remediation hints, expected shapes, etc.
	Cause   error          // Optional: underlying error.
	Params  map[string]any // Structured parameters (e.g. {"expected":"int","got":"str"}).
}

// Issues is the aggregated validation failure for one top-level call. It
// implements error and carries every structural issue found in a single pass.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Path == "" {
			fmt.Fprintf(b, "%s: %s", it.Code, it.Message)
			continue
		}
		fmt.Fprintf(b, "%s at %s: %s", it.Code, it.Path, it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Map renders the aggregate as a path -> message mapping. When a path carries
// more than one issue the messages are joined with "; " in report order.
func (iss Issues) Map() map[string]string {
	if len(iss) == 0 {
		return nil
	}
	out := make(map[string]string, len(iss))
	for _, it := range iss {
		if prev, ok := out[it.Path]; ok {
			out[it.Path] = prev + "; " + it.Message
			continue
		}
		out[it.Path] = it.Message
	}
	return out
}

// Paths returns the distinct issue paths in sorted order.
func (iss Issues) Paths() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, it := range iss {
		if _, ok := seen[it.Path]; ok {
			continue
		}
		seen[it.Path] = struct{}{}
		out = append(out, it.Path)
	}
	sort.Strings(out)
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HookError surfaces an error raised by a user hook. Hook errors abort the
// pipeline immediately and are never merged into an Issues aggregate.
type HookError struct {
	Stage string // "model-before", "field-before", "field-after", "model-after"
	Field string // empty for model-level hooks
	Err   error
}

func (e *HookError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s hook: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s hook for %q: %v", e.Stage, e.Field, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// AsHookError extracts a *HookError from an error chain.
func AsHookError(err error) (*HookError, bool) {
	var he *HookError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
