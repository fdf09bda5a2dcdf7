package units

import "fmt"

// Quantity is an immutable scalar tagged with a physical dimension.
// The zero value is a dimensionless zero.
type Quantity struct {
	mag float64
	dim Dimension
	raw bool
}

// New builds a Quantity with the given magnitude and dimension.
func New(mag float64, dim Dimension) Quantity {
	return Quantity{mag: mag, dim: dim.Clone()}
}

// Dimensionless builds a Quantity that explicitly carries no dimension.
// Unlike [Raw], it is not adopted by a declared unit during coercion.
func Dimensionless(mag float64) Quantity {
	return Quantity{mag: mag, dim: Dimension{}}
}

// Raw wraps a bare number that carries no unit yet. [Coerce] assigns it
// the declared dimension of whatever entity it was computed for.
func Raw(mag float64) Quantity {
	return Quantity{mag: mag, raw: true}
}

func (q Quantity) Magnitude() float64 { return q.mag }

// Dim returns a copy of the quantity's dimension.
func (q Quantity) Dim() Dimension { return q.dim.Clone() }

// IsRaw reports whether the quantity is an uncoerced bare number.
func (q Quantity) IsRaw() bool { return q.raw }

func (q Quantity) SameDim(other Quantity) bool { return q.dim.Equal(other.dim) }

// Add returns q + other, failing unless both dimensions are identical.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if !q.dim.Equal(other.dim) {
		return Quantity{}, &MismatchError{Op: "add", Left: q.dim.Clone(), Right: other.dim.Clone()}
	}
	return Quantity{mag: q.mag + other.mag, dim: q.dim.Clone()}, nil
}

// Sub returns q - other, failing unless both dimensions are identical.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if !q.dim.Equal(other.dim) {
		return Quantity{}, &MismatchError{Op: "sub", Left: q.dim.Clone(), Right: other.dim.Clone()}
	}
	return Quantity{mag: q.mag - other.mag, dim: q.dim.Clone()}, nil
}

// Mul returns q * other; dimensions compose by adding exponents.
func (q Quantity) Mul(other Quantity) Quantity {
	return Quantity{mag: q.mag * other.mag, dim: q.dim.Mul(other.dim)}
}

// Div returns q / other; dimensions compose by subtracting exponents.
func (q Quantity) Div(other Quantity) Quantity {
	return Quantity{mag: q.mag / other.mag, dim: q.dim.Div(other.dim)}
}

// Scale multiplies the magnitude by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{mag: q.mag * f, dim: q.dim.Clone()}
}

func (q Quantity) String() string {
	if q.raw {
		return fmt.Sprintf("%g (raw)", q.mag)
	}
	if q.dim.IsDimensionless() {
		return fmt.Sprintf("%g", q.mag)
	}
	return fmt.Sprintf("%g %s", q.mag, q.dim)
}

// Coerce is the engine's defensive boundary against user-supplied formulas.
// A raw quantity adopts the declared dimension; a tagged quantity must
// already match it exactly.
func Coerce(q Quantity, declared Dimension) (Quantity, error) {
	if q.raw {
		return New(q.mag, declared), nil
	}
	if !q.dim.Equal(declared) {
		return Quantity{}, &MismatchError{Op: "coerce", Left: q.dim.Clone(), Right: declared.Clone()}
	}
	return q, nil
}
