package poly

// Term is one linear term: a variable-instance key and its coefficient.
type Term struct {
	Var  string
	Coef float64
}

// Polynomial is a linear combination of variable instances plus a
// constant. Term order follows first insertion of each instance.
type Polynomial struct {
	coefs    map[string]float64
	order    []string
	Constant float64
}

// New returns the zero polynomial.
func New() *Polynomial {
	return &Polynomial{coefs: map[string]float64{}}
}

// Const returns a polynomial holding only a constant term.
func Const(c float64) *Polynomial {
	p := New()
	p.Constant = c
	return p
}

// AddTerm accumulates c onto the coefficient of the given instance.
// Repeated references to the same instance merge rather than duplicate.
func (p *Polynomial) AddTerm(key string, c float64) {
	if _, seen := p.coefs[key]; !seen {
		p.order = append(p.order, key)
	}
	p.coefs[key] += c
}

// Coef returns the coefficient for an instance key, zero if absent.
func (p *Polynomial) Coef(key string) float64 {
	return p.coefs[key]
}

// Add accumulates q into p.
func (p *Polynomial) Add(q *Polynomial) {
	for _, key := range q.order {
		p.AddTerm(key, q.coefs[key])
	}
	p.Constant += q.Constant
}

// Sub subtracts q from p.
func (p *Polynomial) Sub(q *Polynomial) {
	for _, key := range q.order {
		p.AddTerm(key, -q.coefs[key])
	}
	p.Constant -= q.Constant
}

// Scale multiplies every coefficient and the constant by k.
func (p *Polynomial) Scale(k float64) {
	for key := range p.coefs {
		p.coefs[key] *= k
	}
	p.Constant *= k
}

// Clone returns an independent copy.
func (p *Polynomial) Clone() *Polynomial {
	q := &Polynomial{
		coefs:    make(map[string]float64, len(p.coefs)),
		order:    append([]string(nil), p.order...),
		Constant: p.Constant,
	}
	for k, v := range p.coefs {
		q.coefs[k] = v
	}
	return q
}

// Terms returns the non-zero terms in insertion order.
func (p *Polynomial) Terms() []Term {
	terms := make([]Term, 0, len(p.order))
	for _, key := range p.order {
		if c := p.coefs[key]; c != 0 {
			terms = append(terms, Term{Var: key, Coef: c})
		}
	}
	return terms
}

// IsConstant reports whether p carries no variable term.
func (p *Polynomial) IsConstant() bool {
	return len(p.Terms()) == 0
}
