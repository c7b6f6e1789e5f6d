package model

import "github.com/zclconf/go-cty/cty"

// Snapshot captures the full registry state so that a multi-entity
// compile step (a constraint plus the auxiliary variables and rows its
// linearization introduced) can be rolled back as one unit. Compiling is
// atomic per declared entity: either everything commits or nothing does.
type Snapshot struct {
	instances   []*Instance
	byKey       map[string]*Instance
	families    map[string]*family
	constraints []*Constraint
	colNames    map[string]string
	rowNames    map[string]string
	objective   *Objective
	auxCounters map[string]int
}

// Snapshot returns a copy of the current registry state.
func (m *Model) Snapshot() *Snapshot {
	s := &Snapshot{
		instances:   append([]*Instance(nil), m.instances...),
		byKey:       make(map[string]*Instance, len(m.byKey)),
		families:    make(map[string]*family, len(m.families)),
		constraints: append([]*Constraint(nil), m.constraints...),
		colNames:    make(map[string]string, len(m.colNames)),
		rowNames:    make(map[string]string, len(m.rowNames)),
		objective:   m.objective,
		auxCounters: make(map[string]int, len(m.auxCounters)),
	}
	for k, v := range m.byKey {
		s.byKey[k] = v
	}
	for k, v := range m.families {
		s.families[k] = v.clone()
	}
	for k, v := range m.colNames {
		s.colNames[k] = v
	}
	for k, v := range m.rowNames {
		s.rowNames[k] = v
	}
	for k, v := range m.auxCounters {
		s.auxCounters[k] = v
	}
	return s
}

// Restore rolls the registries back to a prior snapshot.
func (m *Model) Restore(s *Snapshot) {
	m.instances = s.instances
	m.byKey = s.byKey
	m.families = s.families
	m.constraints = s.constraints
	m.colNames = s.colNames
	m.rowNames = s.rowNames
	m.objective = s.objective
	m.auxCounters = s.auxCounters
}

func (f *family) clone() *family {
	c := &family{
		kind:    f.kind,
		lower:   f.lower,
		upper:   f.upper,
		arity:   f.arity,
		domains: make([][]cty.Value, len(f.domains)),
		seen:    make([]map[string]bool, len(f.seen)),
	}
	for i, d := range f.domains {
		c.domains[i] = append([]cty.Value(nil), d...)
	}
	for i, s := range f.seen {
		c.seen[i] = make(map[string]bool, len(s))
		for k, v := range s {
			c.seen[i][k] = v
		}
	}
	return c
}
