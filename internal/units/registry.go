package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Registry resolves unit symbols to dimensions. Models construct one,
// define the base units they need, and pass it wherever unit strings are
// parsed. There is deliberately no package-level default: one registry per
// run, injected explicitly.
type Registry struct {
	defs map[string]Dimension
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Dimension)}
}

// Define registers name as a new base dimension and returns it.
// Redefining a name overwrites the previous definition.
func (r *Registry) Define(name string) Dimension {
	d := Dimension{name: 1}
	r.defs[name] = d
	return d
}

// DefineDerived registers name as an alias for a unit expression built
// from already-defined symbols, e.g. DefineDerived("flow", "person/day").
func (r *Registry) DefineDerived(name, expr string) (Dimension, error) {
	d, err := r.Parse(expr)
	if err != nil {
		return nil, err
	}
	r.defs[name] = d
	return d, nil
}

// Parse translates a unit expression like "person", "person/day" or
// "1/day^2" into a Dimension. The empty string and "dimensionless" both
// denote the dimensionless unit.
func (r *Registry) Parse(expr string) (Dimension, error) {
	s := strings.ReplaceAll(expr, " ", "")
	if s == "" || s == "1" || s == "dimensionless" {
		return Dimension{}, nil
	}

	dim := Dimension{}
	div := false
	for len(s) > 0 {
		cut := strings.IndexAny(s, "*/")
		if cut == 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadUnitExpr, expr)
		}
		var tok string
		var op byte
		if cut == -1 {
			tok, s = s, ""
		} else {
			tok, op, s = s[:cut], s[cut], s[cut+1:]
			if s == "" {
				return nil, fmt.Errorf("%w: trailing operator in %q", ErrBadUnitExpr, expr)
			}
		}
		d, err := r.parseFactor(tok, expr)
		if err != nil {
			return nil, err
		}
		if div {
			dim = dim.Div(d)
		} else {
			dim = dim.Mul(d)
		}
		div = op == '/'
	}
	return dim, nil
}

func (r *Registry) parseFactor(tok, full string) (Dimension, error) {
	name := tok
	exp := 1
	if i := strings.Index(tok, "^"); i >= 0 {
		name = tok[:i]
		n, err := strconv.Atoi(tok[i+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: bad exponent in %q", ErrBadUnitExpr, full)
		}
		exp = n
	}
	if name == "1" {
		return Dimension{}, nil
	}
	d, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, name, full)
	}
	return d.Pow(exp), nil
}

// MustParse is Parse for statically known expressions; it panics on error.
func (r *Registry) MustParse(expr string) Dimension {
	d, err := r.Parse(expr)
	if err != nil {
		panic(err)
	}
	return d
}

// Quantity parses expr and tags mag with the resulting dimension.
func (r *Registry) Quantity(mag float64, expr string) (Quantity, error) {
	d, err := r.Parse(expr)
	if err != nil {
		return Quantity{}, err
	}
	return New(mag, d), nil
}

// MustQuantity is Quantity for statically known expressions.
func (r *Registry) MustQuantity(mag float64, expr string) Quantity {
	return New(mag, r.MustParse(expr))
}
