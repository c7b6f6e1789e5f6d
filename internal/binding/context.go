package binding

import (
	"github.com/zclconf/go-cty/cty"
)

// Context maps bound generator names to concrete domain values for one
// enumeration step. Bind returns a derived context; the receiver is never
// mutated, so sibling enumeration steps cannot observe each other.
type Context struct {
	names []string
	vals  map[string]cty.Value
}

// NewContext returns an empty binding context.
func NewContext() *Context {
	return &Context{vals: map[string]cty.Value{}}
}

// Bind returns a new context with name bound to v. A rebinding of an
// existing name shadows the outer value for the new context only.
func (c *Context) Bind(name string, v cty.Value) *Context {
	child := &Context{
		names: make([]string, 0, len(c.names)+1),
		vals:  make(map[string]cty.Value, len(c.vals)+1),
	}
	for _, n := range c.names {
		child.names = append(child.names, n)
		child.vals[n] = c.vals[n]
	}
	if _, shadowed := child.vals[name]; !shadowed {
		child.names = append(child.names, name)
	}
	child.vals[name] = v
	return child
}

// Lookup resolves name by exact match. There is no positional or fuzzy
// fallback; a miss is a miss.
func (c *Context) Lookup(name string) (cty.Value, bool) {
	v, ok := c.vals[name]
	return v, ok
}

// Names returns the bound names in binding order.
func (c *Context) Names() []string {
	return c.names
}

// Len returns the number of bound names.
func (c *Context) Len() int {
	return len(c.names)
}
