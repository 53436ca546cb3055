package eval

import (
	"strings"

	"github.com/sheetcore/engine/internal/formula"
)

// ArgMode is whether a function's arguments are evaluated before the
// call (Eager) or handed to the function as raw subtrees so it can
// choose which to evaluate (Lazy).
type ArgMode uint8

const (
	Eager ArgMode = iota
	Lazy
)

// FuncDef is one entry in the built-in function registry. Exactly one
// of Eager/Lazy is set, matching Mode.
type FuncDef struct {
	Name  string
	Mode  ArgMode
	Eager func(e *Evaluator, args []Result) Result
	Lazy  func(e *Evaluator, args []formula.Node) Result
}

var registry = map[string]FuncDef{}

// register adds a function definition, upper-casing its name so
// Lookup's case-insensitive match is a plain map hit. It panics if
// Mode disagrees with formula.LazyFunctionNames, the single source of
// truth the static reference walker uses to decide which calls to
// skip -- the two must never drift apart.
func register(def FuncDef) {
	name := strings.ToUpper(def.Name)
	if formula.IsLazyFunction(name) != (def.Mode == Lazy) {
		panic("eval: " + name + " lazy/eager mode disagrees with formula.LazyFunctionNames")
	}
	registry[name] = def
}

// Lookup resolves a case-insensitive function name to its definition.
func Lookup(name string) (FuncDef, bool) {
	def, ok := registry[strings.ToUpper(name)]
	return def, ok
}
