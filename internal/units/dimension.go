// Package units provides the dimensional-analysis layer of the engine.
//
// Every value flowing through a model is a [Quantity]: a magnitude tagged
// with a [Dimension], a product of base dimensions with integer exponents
// (person, day, person/day, 1/day^2, ...). Addition and subtraction require
// identical dimensions; multiplication and division compose them. Unit
// strings are resolved by an explicit [Registry] passed in by the caller,
// never by a package-level singleton.
package units

import (
	"fmt"
	"sort"
	"strings"
)

// Dimension maps a base-dimension symbol to its exponent. Zero exponents
// are never stored; the empty map (or nil) is dimensionless.
type Dimension map[string]int

func (d Dimension) Clone() Dimension {
	c := make(Dimension, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

func (d Dimension) IsDimensionless() bool { return len(d) == 0 }

func (d Dimension) Equal(other Dimension) bool {
	if len(d) != len(other) {
		return false
	}
	for k, v := range d {
		if other[k] != v {
			return false
		}
	}
	return true
}

// Mul returns the dimension of a product: exponents add.
func (d Dimension) Mul(other Dimension) Dimension {
	c := d.Clone()
	for k, v := range other {
		c[k] += v
		if c[k] == 0 {
			delete(c, k)
		}
	}
	return c
}

// Div returns the dimension of a quotient: exponents subtract.
func (d Dimension) Div(other Dimension) Dimension {
	c := d.Clone()
	for k, v := range other {
		c[k] -= v
		if c[k] == 0 {
			delete(c, k)
		}
	}
	return c
}

// Pow raises every exponent by n.
func (d Dimension) Pow(n int) Dimension {
	if n == 0 {
		return Dimension{}
	}
	c := make(Dimension, len(d))
	for k, v := range d {
		c[k] = v * n
	}
	return c
}

// String renders the dimension in "a*b/c^2" form with symbols sorted,
// so equal dimensions always print identically.
func (d Dimension) String() string {
	if len(d) == 0 {
		return "dimensionless"
	}
	var pos, neg []string
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := d[k]
		switch {
		case e == 1:
			pos = append(pos, k)
		case e > 1:
			pos = append(pos, fmt.Sprintf("%s^%d", k, e))
		case e == -1:
			neg = append(neg, k)
		default:
			neg = append(neg, fmt.Sprintf("%s^%d", k, -e))
		}
	}
	var b strings.Builder
	if len(pos) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(pos, "*"))
	}
	if len(neg) > 0 {
		b.WriteString("/")
		b.WriteString(strings.Join(neg, "/"))
	}
	return b.String()
}
