package model

import (
	"math"
	"strings"
)

// Kind classifies a decision variable.
type Kind int

const (
	Continuous Kind = iota
	Integer
	Binary
)

// String returns the configuration-surface spelling of the kind.
func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	}
	return "unknown"
}

// ParseKind maps the configuration-surface spelling to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "continuous":
		return Continuous, true
	case "integer":
		return Integer, true
	case "binary":
		return Binary, true
	}
	return Continuous, false
}

// Op is a constraint relation. Strict inequalities and disequality have
// no linear-programming counterpart and never reach the assembler.
type Op int

const (
	OpLe Op = iota
	OpGe
	OpEq
)

// String returns the LP-format spelling of the relation.
func (op Op) String() string {
	switch op {
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpEq:
		return "="
	}
	return "?"
}

// Direction is the objective sense.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// String returns the LP-format section keyword for the direction.
func (d Direction) String() string {
	if d == Maximize {
		return "Maximize"
	}
	return "Minimize"
}

// ParseInfinity maps the bound-token spellings of infinity to a float.
// Accepted tokens are inf, +inf, -inf, and infinity, case-insensitively.
func ParseInfinity(s string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), true
	case "-inf", "-infinity":
		return math.Inf(-1), true
	}
	return 0, false
}
