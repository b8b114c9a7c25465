package interp

import "fmt"

// Env is one scope of a Pivot program: the globals, a function call frame
// or a block. Lookups walk outward through enclosing scopes.
type Env struct {
	parent *Env
	values map[string]Value
}

// NewEnv opens a scope nested in parent. A nil parent makes the global scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		values: make(map[string]Value),
	}
}

// Define binds name in this scope, replacing any earlier binding. Parameters,
// functions and builtins are bound this way.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// Declare binds a let/var name in this scope. A nested scope rejects a
// second declaration of the same name; the global scope accepts it so a
// shell session can redefine its variables.
func (e *Env) Declare(name string, val Value) error {
	if _, ok := e.values[name]; ok && e.parent != nil {
		return fmt.Errorf("%s is already declared in this scope", name)
	}
	e.values[name] = val
	return nil
}

// Set assigns to the nearest scope that binds name.
func (e *Env) Set(name string, val Value) error {
	scope := e.lookup(name)
	if scope == nil {
		return fmt.Errorf("unbound variable: %s", name)
	}
	scope.values[name] = val
	return nil
}

// Get reads name from the nearest scope that binds it.
func (e *Env) Get(name string) (Value, error) {
	scope := e.lookup(name)
	if scope == nil {
		return Value{}, fmt.Errorf("unbound variable: %s", name)
	}
	return scope.values[name], nil
}

func (e *Env) lookup(name string) *Env {
	for scope := e; scope != nil; scope = scope.parent {
		if _, ok := scope.values[name]; ok {
			return scope
		}
	}
	return nil
}

// Parent returns the enclosing scope, or nil for the global scope.
func (e *Env) Parent() *Env {
	return e.parent
}
