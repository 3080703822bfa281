//
//  Copyright © Manetu Inc. All rights reserved.
//
// OPA abstraction for compiling and evaluating Rego modules

package opa

import (
	"context"
	"strings"

	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/pkg/errors"
)

var logger = logging.GetLogger("tablevalidator.opa")
var agent = "opa"

// ErrNoResults is returned by Evaluate when the query is undefined.
var ErrNoResults = errors.New("no opa results")

// Builtins is a set of builtin function names
type Builtins map[string]struct{}

// Compiler turns Rego source into reusable ASTs
type Compiler struct {
	options *CompilerOptions
}

// Ast is a compiled set of Rego modules
type Ast struct {
	name     string
	compiler *ast.Compiler
	trace    bool
}

// Modules is a map of module name to module source code
type Modules map[string]string

// CompilerOptions contains configuration options for the compiler.
type CompilerOptions struct {
	regoVersion  ast.RegoVersion
	capabilities *ast.Capabilities
	trace        bool
}

func filter[T any](ss []T, test func(T) bool) (ret []T) {
	for _, s := range ss {
		if test(s) {
			ret = append(ret, s)
		}
	}
	return
}

// CompilerOptionFunc is a function that modifies CompilerOptions.
type CompilerOptionFunc func(*CompilerOptions)

// WithRegoVersion sets the rego version for the compiler.
func WithRegoVersion(regoVersion ast.RegoVersion) CompilerOptionFunc {
	return func(o *CompilerOptions) {
		o.regoVersion = regoVersion
	}
}

// WithDefaultCapabilities resets the capabilities back to the default
func WithDefaultCapabilities() CompilerOptionFunc {
	return func(o *CompilerOptions) {
		o.capabilities = ast.CapabilitiesForThisVersion()
	}
}

// WithUnsafeBuiltins removes the named builtins from the compiler capabilities.
func WithUnsafeBuiltins(unsafeBuiltins Builtins) CompilerOptionFunc {
	return func(o *CompilerOptions) {
		o.capabilities.Builtins = filter(o.capabilities.Builtins, func(builtin *ast.Builtin) bool { _, ok := unsafeBuiltins[builtin.Name]; return !ok })
	}
}

// WithDefaultTracing enables evaluation tracing unless overridden per call with WithTrace.
func WithDefaultTracing(trace bool) CompilerOptionFunc {
	return func(o *CompilerOptions) {
		o.trace = trace
	}
}

// NewCompiler creates a new Compiler for Rego v1 with the specified options.
func NewCompiler(options ...CompilerOptionFunc) *Compiler {
	opts := &CompilerOptions{
		regoVersion:  ast.RegoV1,
		capabilities: ast.CapabilitiesForThisVersion(),
	}
	for _, o := range options {
		o(opts)
	}

	return &Compiler{options: opts}
}

// Clone creates a new instance of Compiler based on the current configuration, optionally applying additional options.
func (c *Compiler) Clone(options ...CompilerOptionFunc) *Compiler {
	// the builtin declarations carry unexported type state, so copy the
	// capabilities shallowly and give the clone its own Builtins slice
	capabilities := *c.options.capabilities
	capabilities.Builtins = append([]*ast.Builtin(nil), c.options.capabilities.Builtins...)

	opts := &CompilerOptions{
		regoVersion:  c.options.regoVersion,
		capabilities: &capabilities,
		trace:        c.options.trace,
	}
	for _, o := range options {
		o(opts)
	}

	return &Compiler{options: opts}
}

// Compile compiles the provided modules and returns an Ast suitable for reusable evaluation.
func (c *Compiler) Compile(name string, modules Modules) (*Ast, error) {
	parsed := make(map[string]*ast.Module, len(modules))

	for f, module := range modules {
		pm, err := ast.ParseModuleWithOpts(f, module, ast.ParserOptions{RegoVersion: c.options.regoVersion})
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %s", f)
		}
		parsed[f] = pm
	}

	compiler := ast.NewCompiler().WithCapabilities(c.options.capabilities)

	compiler.Compile(parsed)

	if compiler.Failed() {
		return nil, compiler.Errors
	}

	return &Ast{
		name:     name,
		compiler: compiler,
		trace:    c.options.trace,
	}, nil
}

// Name returns the name the Ast was compiled under.
func (p *Ast) Name() string {
	return p.name
}

// EvalOptions contains configuration options for evaluation.
type EvalOptions struct {
	trace bool
}

// EvalOptionFunc is a function that modifies EvalOptions.
type EvalOptionFunc func(*EvalOptions)

// WithTrace configures whether to enable trace output during evaluation.
func WithTrace(trace bool) EvalOptionFunc {
	return func(o *EvalOptions) {
		o.trace = trace
	}
}

// Evaluate evaluates the compiled AST with the given input and query string
// and returns the first result.
func (p *Ast) Evaluate(ctx context.Context, queryStr string, input interface{}, options ...EvalOptionFunc) (rego.Result, error) {
	logger.Debug(agent, "Evaluate", "Enter")
	defer logger.Debug(agent, "Evaluate", "Exit")

	opts := &EvalOptions{trace: p.trace}
	for _, o := range options {
		o(opts)
	}

	query := rego.New(
		rego.Query(queryStr),
		rego.Compiler(p.compiler),
		rego.Input(input),
		rego.Trace(opts.trace),
	)

	results, err := query.Eval(ctx)
	if err != nil {
		logger.Debugf(agent, "Evaluate", "queryEval %+v", err)
		return rego.Result{}, errors.Wrapf(err, "evaluating %s", p.name)
	} else if len(results) == 0 {
		logger.Debugf(agent, "Evaluate", "no opa results: %s", p.name)
		return rego.Result{}, errors.Wrapf(ErrNoResults, "%s: %s", p.name, queryStr)
	}
	if opts.trace {
		regoTrace := new(strings.Builder)
		rego.PrintTraceWithLocation(regoTrace, query)
		logger.Debugf(agent, "Evaluate", "rego trace:\n%s", regoTrace.String())
	}

	return results[0], nil
}
