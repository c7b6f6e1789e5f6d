package model

import (
	"log/slog"
	"strconv"

	"github.com/vk/optlang/internal/poly"
	"github.com/zclconf/go-cty/cty"
)

// Instance is one concrete decision variable.
type Instance struct {
	Family string
	Index  []string // index values, verbatim
	Kind   Kind
	Lower  float64
	Upper  float64

	// Name is the sanitized emission name; RawName is the verbatim
	// family(idx,...) form retained for diagnostics.
	Name    string
	RawName string
}

// Constraint is one linear constraint row.
type Constraint struct {
	Name    string
	RawName string
	Left    *poly.Polynomial
	Op      Op
	Right   *poly.Polynomial
}

// Objective is the single optimization target.
type Objective struct {
	Expr      *poly.Polynomial
	Direction Direction
}

// family is the declaration-level record for a variable family.
type family struct {
	kind    Kind
	lower   float64
	upper   float64
	arity   int
	domains [][]cty.Value
	seen    []map[string]bool // per-position membership, mirrors domains
}

// Model accumulates variables, constraints, and the objective. It is the
// only mutable state in a compilation; everything else is a pure function
// of its inputs.
type Model struct {
	logger *slog.Logger

	instances   []*Instance
	byKey       map[string]*Instance
	families    map[string]*family
	constraints []*Constraint
	objective   *Objective
	auxCounters map[string]int

	// LP rows and columns are separate namespaces, so sanitized-name
	// uniqueness is tracked per side (sanitized -> raw).
	colNames map[string]string
	rowNames map[string]string
}

// New returns an empty model writing sanitization notices to logger.
// A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		logger:      logger,
		byKey:       map[string]*Instance{},
		families:    map[string]*family{},
		colNames:    map[string]string{},
		rowNames:    map[string]string{},
		auxCounters: map[string]int{},
	}
}

// Instance resolves a fully concrete reference to its canonical key,
// reporting whether the instance is declared.
func (m *Model) Instance(familyName string, index []string) (string, bool) {
	key := RawName(familyName, index)
	_, ok := m.byKey[key]
	return key, ok
}

// Lookup returns the instance registered under a canonical key.
func (m *Model) Lookup(key string) (*Instance, bool) {
	inst, ok := m.byKey[key]
	return inst, ok
}

// Bounds returns the declared bounds of an instance.
func (m *Model) Bounds(key string) (lower, upper float64, ok bool) {
	inst, found := m.byKey[key]
	if !found {
		return 0, 0, false
	}
	return inst.Lower, inst.Upper, true
}

// Arity returns the number of index positions of a declared family.
func (m *Model) Arity(familyName string) (int, bool) {
	fam, ok := m.families[familyName]
	if !ok {
		return 0, false
	}
	return fam.arity, true
}

// IndexDomain returns the registered domain for one index position of a
// family, in declaration order across additive declarations. This is the
// domain a wildcard in that position expands over.
func (m *Model) IndexDomain(familyName string, pos int) ([]cty.Value, bool) {
	fam, ok := m.families[familyName]
	if !ok || pos < 0 || pos >= fam.arity {
		return nil, false
	}
	return fam.domains[pos], true
}

// Instances returns the variable registry in insertion order.
func (m *Model) Instances() []*Instance {
	return m.instances
}

// Constraints returns the constraint list in insertion order.
func (m *Model) Constraints() []*Constraint {
	return m.constraints
}

// Objective returns the objective, if one has been set.
func (m *Model) Objective() (*Objective, bool) {
	if m.objective == nil {
		return nil, false
	}
	return m.objective, true
}

// FreshAux reserves the next name in an auxiliary family series, e.g.
// abs_1, abs_2. Linearization uses it for introduced variables.
func (m *Model) FreshAux(prefix string) string {
	m.auxCounters[prefix]++
	return prefix + "_" + strconv.Itoa(m.auxCounters[prefix])
}
