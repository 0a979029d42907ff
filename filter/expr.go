package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Jason2031/byrbt-bot/tracker"
)

// Filter is a compiled filter expression, safe for concurrent use.
type Filter struct {
	expression string
	program    *vm.Program
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables compiled-filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// Compiler compiles filter expressions into executable filters. The
// interactive shell reuses one compiler, so presets compile once.
type Compiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile compiles an expression into an executable filter
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	// Check cache if enabled
	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached.(*Filter), nil
		}
	}

	// Compile with static environment for validation
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(), // Allow torrent properties
		expr.AsBool(),                  // Ensure boolean result
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &Filter{
		expression: expression,
		program:    program,
	}

	// Cache if enabled
	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate runs the filter against one torrent.
func (f *Filter) Evaluate(t tracker.Torrent) (bool, error) {
	env := createRuntimeEnvironment(t)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression:   f.expression,
			TorrentTitle: t.Title,
			Err:          err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Match is Evaluate for use as a listing predicate: torrents whose
// evaluation errors are treated as non-matching.
func (f *Filter) Match(t tracker.Torrent) bool {
	ok, err := f.Evaluate(t)
	return err == nil && ok
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)
	return funcs
}

// addHelperFunctions adds all helper functions to the provided map
func addHelperFunctions(env map[string]any) {
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Size helpers, so expressions read Size > GB(10)
	env["KB"] = func(n float64) int64 { return int64(n * 1024) }
	env["MB"] = func(n float64) int64 { return int64(n * 1024 * 1024) }
	env["GB"] = func(n float64) int64 { return int64(n * 1024 * 1024 * 1024) }
	// Current time
	env["now"] = time.Now
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(t tracker.Torrent) map[string]any {
	env := make(map[string]any, 32)

	// Add helper functions
	addHelperFunctions(env)

	// Add torrent data
	env["Torrent"] = t

	// Direct torrent properties for convenience
	env["ID"] = t.ID
	env["Title"] = t.Title
	env["Subtitle"] = t.Subtitle
	env["Category"] = t.Category
	env["Promotion"] = string(t.Promotion)
	env["Hot"] = t.Hot
	env["Seeding"] = t.Seeding
	env["Finished"] = t.Finished
	env["Size"] = t.Size
	env["Seeders"] = t.Seeders
	env["Leechers"] = t.Leechers
	env["Snatched"] = t.Snatched

	// Torrent-specific helpers using closures
	env["isFree"] = createIsFreeFunc(t.Promotion)
	env["hasPromotion"] = createHasPromotionFunc(t.Promotion)
	env["ratio"] = createRatioFunc(t.Seeders, t.Leechers)

	return env
}

// Helper factory functions using closures

func createIsFreeFunc(p tracker.Promotion) func() bool {
	return func() bool {
		return p.FreeLeech()
	}
}

func createHasPromotionFunc(p tracker.Promotion) func(string) bool {
	return func(name string) bool {
		return strings.EqualFold(string(p), name)
	}
}

// ratio is seeders per leecher; a swarm with no leechers counts every
// seeder as surplus.
func createRatioFunc(seeders, leechers int) func() float64 {
	return func() float64 {
		if leechers == 0 {
			return float64(seeders)
		}
		return float64(seeders) / float64(leechers)
	}
}
