package interpreter

import (
	"fmt"
	"lyra/token"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Environment defines the bindings that associate variables to values.
// Environments chain through parent to model lexical scoping: the globals
// frame sits at the root, one activation-record frame is pushed per
// function call, and block statements nest additional frames under the
// active call frame.
type Environment struct {
	values map[string]any
	parent *Environment
}

// MakeEnvironment creates a new top-level (global) environment.
func MakeEnvironment() *Environment {
	return &Environment{
		values: make(map[string]any),
	}
}

// MakeNestedEnvironment creates a new environment scoped as a child of parent.
func MakeNestedEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]any),
		parent: parent,
	}
}

// Sets a variable in the environment
// Parameters:
//   - name: string
//     The name of the variable, i.e its indentifier
//   - value: any
//     The value assigned to the variable.
func (env *Environment) set(name string, value any) {
	env.values[name] = value
}

// Gets the value associated to a variable from the environment, searching
// outward through enclosing scopes when the name is not bound locally.
// Parameters:
//   - name: token.Token
//     The variable to retrieve its value
//
// Returns:
//   - any: The value of the specified variable
//   - error: A NameFault (RuntimeError) if the variable has not been
//     previously assigned and its trying to be accessed.
func (env *Environment) get(name token.Token) (any, error) {
	for e := env; e != nil; e = e.parent {
		if value, ok := e.values[name.Lexeme]; ok {
			return value, nil
		}
	}
	msg := fmt.Sprintf("NameFault: undefined variable '%s'%s", name.Lexeme, env.suggestionFor(name.Lexeme))
	return nil, CreateRuntimeError(name.Line, name.Column, msg)
}

// names collects every identifier currently bound anywhere in the
// environment chain, used to power "did you mean" suggestions on NameFault.
func (env *Environment) names() []string {
	var out []string
	for e := env; e != nil; e = e.parent {
		for name := range e.values {
			out = append(out, name)
		}
	}
	return out
}

// suggestionFor fuzzy-matches name against every currently-bound identifier
// and, if a close one exists, returns a " - did you mean 'x'?" suffix for a
// NameFault message. Returns "" when nothing is close enough.
func (env *Environment) suggestionFor(name string) string {
	best := fuzzy.RankFindNormalizedFold(name, env.names())
	if len(best) == 0 {
		return ""
	}
	best.Sort()
	return fmt.Sprintf(" - did you mean '%s'?", best[0].Target)
}

// assign mutates the nearest existing binding for name, searching outward
// through enclosing scopes. It returns a NameFault if no binding exists in
// any enclosing scope (Lyra has no implicit global creation on assignment).
func (env *Environment) assign(name token.Token, value any) error {
	for e := env; e != nil; e = e.parent {
		if _, ok := e.values[name.Lexeme]; ok {
			e.values[name.Lexeme] = value
			return nil
		}
	}
	msg := fmt.Sprintf("NameFault: undefined variable '%s'%s", name.Lexeme, env.suggestionFor(name.Lexeme))
	return CreateRuntimeError(name.Line, name.Column, msg)
}
