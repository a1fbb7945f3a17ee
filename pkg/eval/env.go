package eval

import (
	"sort"
)

// Env is the single flat name -> value mapping of a program run. Blocks,
// loops and branches all share it.
type Env struct {
	vars map[string]Value
}

func NewEnv() *Env {
	return &Env{vars: map[string]Value{}}
}

// Get reports whether name is bound, independently of its value.
func (env *Env) Get(name string) (Value, bool) {
	val, ok := env.vars[name]
	return val, ok
}

func (env *Env) Set(name string, val Value) {
	env.vars[name] = val
}

// Names returns the bound names in sorted order.
func (env *Env) Names() []string {
	names := make([]string, 0, len(env.vars))
	for name := range env.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
