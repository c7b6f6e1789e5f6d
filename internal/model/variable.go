package model

import (
	"fmt"
	"math"

	"github.com/vk/optlang/internal/eval"
	"github.com/vk/optlang/internal/opterr"
	"github.com/zclconf/go-cty/cty"
)

// Bounds carries the optional explicit bounds from the configuration
// surface. Nil means "not specified"; binary variables require both to
// be nil.
type Bounds struct {
	Lower *float64
	Upper *float64
}

// DeclareVariable registers a variable family over the cross-product of
// the given per-position index domains. A nil or empty domains slice
// declares a scalar. Declaring a family again over a disjoint index set
// is additive; any overlap with existing instances is an error and
// commits nothing.
func (m *Model) DeclareVariable(familyName string, domains [][]cty.Value, kind Kind, bounds Bounds) error {
	lower, upper, err := resolveBounds(kind, bounds)
	if err != nil {
		return err
	}

	fam := m.families[familyName]
	if fam != nil {
		if fam.arity != len(domains) {
			return &opterr.ModelError{
				Detail: fmt.Sprintf("variable %q redeclared with %d index positions, previously %d", familyName, len(domains), fam.arity),
			}
		}
		if fam.kind != kind {
			return &opterr.ModelError{
				Detail: fmt.Sprintf("variable %q redeclared as %s, previously %s", familyName, kind, fam.kind),
			}
		}
		if fam.lower != lower || fam.upper != upper {
			return &opterr.ModelError{
				Detail: fmt.Sprintf("variable %q redeclared with different bounds", familyName),
			}
		}
	}

	// Validate the whole declaration before mutating anything: every new
	// instance key must be fresh, both verbatim and after sanitization.
	tuples := crossProduct(domains)
	pending := make([]*Instance, 0, len(tuples))
	pendingKeys := make(map[string]bool, len(tuples))
	for _, tuple := range tuples {
		index := make([]string, len(tuple))
		for i, v := range tuple {
			index[i] = eval.KeyText(v)
		}
		raw := RawName(familyName, index)
		if _, exists := m.byKey[raw]; exists {
			return &opterr.ModelError{
				Detail: fmt.Sprintf("variable %q redeclared over an overlapping index domain: instance %s already exists", familyName, raw),
			}
		}
		if pendingKeys[raw] {
			return &opterr.ModelError{
				Detail: fmt.Sprintf("variable %q: index domain produces duplicate instance %s", familyName, raw),
			}
		}
		pendingKeys[raw] = true

		name := m.sanitized(familyName, index)
		if prior, taken := m.colNames[name]; taken && prior != raw {
			return &opterr.ModelError{
				Detail: fmt.Sprintf("sanitized name %q collides: %s vs %s", name, prior, raw),
			}
		}
		pending = append(pending, &Instance{
			Family:  familyName,
			Index:   index,
			Kind:    kind,
			Lower:   lower,
			Upper:   upper,
			Name:    name,
			RawName: raw,
		})
	}

	// Commit.
	if fam == nil {
		fam = &family{
			kind:    kind,
			lower:   lower,
			upper:   upper,
			arity:   len(domains),
			domains: make([][]cty.Value, len(domains)),
			seen:    make([]map[string]bool, len(domains)),
		}
		for i := range fam.seen {
			fam.seen[i] = map[string]bool{}
		}
		m.families[familyName] = fam
	}
	for pos, domain := range domains {
		for _, v := range domain {
			text := eval.KeyText(v)
			if !fam.seen[pos][text] {
				fam.seen[pos][text] = true
				fam.domains[pos] = append(fam.domains[pos], v)
			}
		}
	}
	for _, inst := range pending {
		m.instances = append(m.instances, inst)
		m.byKey[inst.RawName] = inst
		m.colNames[inst.Name] = inst.RawName
	}
	return nil
}

// resolveBounds checks the bounds legality rules for a kind and returns
// the effective numeric bounds.
func resolveBounds(kind Kind, b Bounds) (lower, upper float64, err error) {
	switch kind {
	case Binary:
		if b.Lower != nil || b.Upper != nil {
			return 0, 0, &opterr.ModelError{
				Detail: "binary variables must not carry explicit bounds",
			}
		}
		return 0, 1, nil

	case Integer:
		lower, upper = math.Inf(-1), math.Inf(1)
		if b.Lower != nil {
			if *b.Lower != math.Trunc(*b.Lower) {
				return 0, 0, &opterr.ModelError{
					Detail: fmt.Sprintf("integer variables require integral bounds, got min_bound %v", *b.Lower),
				}
			}
			lower = *b.Lower
		}
		if b.Upper != nil {
			if *b.Upper != math.Trunc(*b.Upper) {
				return 0, 0, &opterr.ModelError{
					Detail: fmt.Sprintf("integer variables require integral bounds, got max_bound %v", *b.Upper),
				}
			}
			upper = *b.Upper
		}

	default:
		lower, upper = math.Inf(-1), math.Inf(1)
		if b.Lower != nil {
			lower = *b.Lower
		}
		if b.Upper != nil {
			upper = *b.Upper
		}
	}
	if lower > upper {
		return 0, 0, &opterr.ModelError{
			Detail: fmt.Sprintf("min_bound %v exceeds max_bound %v", lower, upper),
		}
	}
	return lower, upper, nil
}

// crossProduct enumerates index tuples in nested declaration order. A
// zero-arity declaration yields the single empty tuple (a scalar).
func crossProduct(domains [][]cty.Value) [][]cty.Value {
	tuples := [][]cty.Value{nil}
	for _, domain := range domains {
		next := make([][]cty.Value, 0, len(tuples)*len(domain))
		for _, t := range tuples {
			for _, v := range domain {
				tuple := make([]cty.Value, len(t)+1)
				copy(tuple, t)
				tuple[len(t)] = v
				next = append(next, tuple)
			}
		}
		tuples = next
	}
	return tuples
}
