/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/suparena/quickcontext"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// DefaultNamespace is the root variable registry names are exposed under.
const DefaultNamespace = "quick"

// Renderer evaluates HCL expressions and templates against a registry.
type Renderer struct {
	registry  *quickcontext.Registry
	namespace string
	variables map[string]cty.Value
	functions map[string]function.Function
	logger    *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithNamespace changes the root variable name. The default is "quick".
func WithNamespace(ns string) Option {
	return func(r *Renderer) {
		r.namespace = ns
	}
}

// WithVariables adds extra root variables. A variable named like the namespace is shadowed.
func WithVariables(vars map[string]cty.Value) Option {
	return func(r *Renderer) {
		for k, v := range vars {
			r.variables[k] = v
		}
	}
}

// WithFunctions adds or replaces functions available to expressions.
func WithFunctions(funcs map[string]function.Function) Option {
	return func(r *Renderer) {
		for k, f := range funcs {
			r.functions[k] = f
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer over reg.
func New(reg *quickcontext.Registry, opts ...Option) *Renderer {
	r := &Renderer{
		registry:  reg,
		namespace: DefaultNamespace,
		variables: make(map[string]cty.Value),
		functions: DefaultFunctions(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultFunctions returns the functions every Renderer starts with.
func DefaultFunctions() map[string]function.Function {
	return map[string]function.Function{
		"upper":      stdlib.UpperFunc,
		"lower":      stdlib.LowerFunc,
		"length":     stdlib.LengthFunc,
		"join":       stdlib.JoinFunc,
		"format":     stdlib.FormatFunc,
		"coalesce":   stdlib.CoalesceFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
	}
}

// Error carries the diagnostics of a failed evaluation. Errors raised while resolving
// registry entries stay reachable through errors.Is and errors.As.
type Error struct {
	Diagnostics hcl.Diagnostics
}

func (e *Error) Error() string {
	return e.Diagnostics.Error()
}

func (e *Error) Unwrap() []error {
	var errs []error
	for _, d := range e.Diagnostics {
		if err, ok := d.Extra.(error); ok {
			errs = append(errs, err)
		}
	}
	return errs
}

// EvalExpression evaluates a single HCL expression such as quick.user.root.email.
func (r *Renderer) EvalExpression(ctx context.Context, src string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<expr>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, &Error{Diagnostics: diags}
	}
	return r.evaluate(ctx, expr)
}

// RenderTemplate renders an HCL template such as "Hello ${quick.user.root.username}".
// A template that evaluates to null as a whole renders as the empty string.
func (r *Renderer) RenderTemplate(ctx context.Context, name, src string) (string, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(src), name, hcl.InitialPos)
	if diags.HasErrors() {
		return "", &Error{Diagnostics: diags}
	}

	val, err := r.evaluate(ctx, expr)
	if err != nil {
		return "", err
	}
	if val.IsNull() {
		return "", nil
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	if str.IsNull() {
		return "", nil
	}
	return str.AsString(), nil
}

func (r *Renderer) evaluate(ctx context.Context, expr hclsyntax.Expression) (cty.Value, error) {
	evalCtx, diags := r.EvalContext(ctx, expr.Variables())
	if diags.HasErrors() {
		return cty.NilVal, &Error{Diagnostics: diags}
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, &Error{Diagnostics: diags}
	}
	return val, nil
}

// EvalContext builds the evaluation context for the given traversals. Only the
// traversals rooted at the namespace are resolved against the registry; each one
// contributes the smallest object needed for HCL to finish the traversal itself.
func (r *Renderer) EvalContext(ctx context.Context, traversals []hcl.Traversal) (*hcl.EvalContext, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	root := &node{}
	seen := make(map[string]bool)

	for _, t := range traversals {
		if t.RootName() != r.namespace {
			continue
		}

		steps := attrSteps(t[1:])
		key := strings.Join(steps, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		if len(steps) == 0 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing context name",
				Detail:   fmt.Sprintf("%q must be followed by a registered name, like %s.<name>.", r.namespace, r.namespace),
				Subject:  t.SourceRange().Ptr(),
			})
			continue
		}

		val, rest, err := r.registry.ResolvePath(ctx, steps[0], steps[1:]...)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unable to resolve context value",
				Detail:   fmt.Sprintf("Resolving %s.%s: %s.", r.namespace, strings.Join(steps, "."), err),
				Subject:  t.SourceRange().Ptr(),
				Extra:    err,
			})
			continue
		}
		if _, isEntry := val.(quickcontext.Entry); isEntry {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing lookup value",
				Detail:   fmt.Sprintf("%s.%s must be followed by a literal lookup value or filter__<field>.<value>.", r.namespace, steps[0]),
				Subject:  t.SourceRange().Ptr(),
			})
			continue
		}

		converted, err := ToValue(val)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported context value",
				Detail:   fmt.Sprintf("Converting %s.%s: %s.", r.namespace, steps[0], err),
				Subject:  t.SourceRange().Ptr(),
				Extra:    err,
			})
			continue
		}

		consumed := steps[:len(steps)-len(rest)]
		r.logger.Debug("Resolved context traversal", "namespace", r.namespace, "path", strings.Join(consumed, "."))
		root.set(consumed, converted)
	}

	vars := make(map[string]cty.Value, len(r.variables)+1)
	for k, v := range r.variables {
		vars[k] = v
	}
	vars[r.namespace] = root.value()

	return &hcl.EvalContext{Variables: vars, Functions: r.functions}, diags
}

// attrSteps returns the leading attribute names of a relative traversal. Both .name
// and ["name"] count; the first step of any other kind ends the list.
func attrSteps(rel hcl.Traversal) []string {
	steps := make([]string, 0, len(rel))
	for _, step := range rel {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			steps = append(steps, s.Name)
		case hcl.TraverseIndex:
			if s.Key.Type() != cty.String || !s.Key.IsKnown() || s.Key.IsNull() {
				return steps
			}
			steps = append(steps, s.Key.AsString())
		default:
			return steps
		}
	}
	return steps
}

// ToValue converts a resolved Go value to cty through its JSON encoding. nil becomes
// a null value; cty values pass through unchanged.
func ToValue(v any) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return val, nil
	}

	buf, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	ty, err := ctyjson.ImpliedType(buf)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to infer type of %T: %w", v, err)
	}
	out, err := ctyjson.Unmarshal(buf, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return out, nil
}

// node accumulates resolved values into the nested objects HCL traverses.
type node struct {
	leaf     *cty.Value
	children map[string]*node
}

func (n *node) set(path []string, v cty.Value) {
	if n.leaf != nil {
		return
	}
	if len(path) == 0 {
		n.leaf = &v
		n.children = nil
		return
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	child, ok := n.children[path[0]]
	if !ok {
		child = &node{}
		n.children[path[0]] = child
	}
	child.set(path[1:], v)
}

func (n *node) value() cty.Value {
	if n.leaf != nil {
		return *n.leaf
	}
	if len(n.children) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(n.children))
	for k, child := range n.children {
		attrs[k] = child.value()
	}
	return cty.ObjectVal(attrs)
}
