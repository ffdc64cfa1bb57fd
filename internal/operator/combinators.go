package operator

import (
	"fmt"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Sum is the sum of operators on a common grid.
type Sum struct {
	base
	ops []Operator
}

func NewSum(ops ...Operator) (*Sum, error) {
	b, err := combine(ops)
	if err != nil {
		return nil, err
	}
	return &Sum{base: b, ops: append([]Operator(nil), ops...)}, nil
}

func (s *Sum) Operators() []Operator { return append([]Operator(nil), s.ops...) }

func (s *Sum) ApplyToWaveFunction(psi *tensor.Tensor, t float64) *tensor.Tensor {
	return s.fold(psi, t, Operator.ApplyToWaveFunction)
}

func (s *Sum) ApplyFromLeft(rho *tensor.Tensor, t float64) *tensor.Tensor {
	return s.fold(rho, t, Operator.ApplyFromLeft)
}

func (s *Sum) ApplyFromRight(rho *tensor.Tensor, t float64) *tensor.Tensor {
	return s.fold(rho, t, Operator.ApplyFromRight)
}

func (s *Sum) fold(data *tensor.Tensor, t float64, apply func(Operator, *tensor.Tensor, float64) *tensor.Tensor) *tensor.Tensor {
	out := apply(s.ops[0], data, t)
	for _, op := range s.ops[1:] {
		out = out.Add(apply(op, data, t))
	}
	return out
}

// Product is the operator product ops[0] * ops[1] * ... on a common grid.
type Product struct {
	base
	ops []Operator
}

func NewProduct(ops ...Operator) (*Product, error) {
	b, err := combine(ops)
	if err != nil {
		return nil, err
	}
	return &Product{base: b, ops: append([]Operator(nil), ops...)}, nil
}

func (p *Product) Operators() []Operator { return append([]Operator(nil), p.ops...) }

// ApplyToWaveFunction applies the factors right to left.
func (p *Product) ApplyToWaveFunction(psi *tensor.Tensor, t float64) *tensor.Tensor {
	for i := len(p.ops) - 1; i >= 0; i-- {
		psi = p.ops[i].ApplyToWaveFunction(psi, t)
	}
	return psi
}

func (p *Product) ApplyFromLeft(rho *tensor.Tensor, t float64) *tensor.Tensor {
	for i := len(p.ops) - 1; i >= 0; i-- {
		rho = p.ops[i].ApplyFromLeft(rho, t)
	}
	return rho
}

// ApplyFromRight applies the factors left to right, rho * A * B = (rho A) B.
func (p *Product) ApplyFromRight(rho *tensor.Tensor, t float64) *tensor.Tensor {
	for _, op := range p.ops {
		rho = op.ApplyFromRight(rho, t)
	}
	return rho
}

// Scale returns c * op.
func Scale(c complex128, op Operator) (*Product, error) {
	k, err := NewConstant(op.Grid(), c)
	if err != nil {
		return nil, err
	}
	return NewProduct(k, op)
}

// Negate returns -op.
func Negate(op Operator) (*Product, error) {
	return Scale(-1, op)
}

// AddConstant returns op + c.
func AddConstant(op Operator, c complex128) (*Sum, error) {
	k, err := NewConstant(op.Grid(), c)
	if err != nil {
		return nil, err
	}
	return NewSum(op, k)
}

func combine(ops []Operator) (base, error) {
	if len(ops) == 0 {
		return base{}, fmt.Errorf("%w: need at least one operator", qdyn.ErrInvalidValue)
	}

	b := base{grid: ops[0].Grid()}
	for _, op := range ops {
		if !op.Grid().Equal(b.grid) {
			return base{}, fmt.Errorf("%w: all operators must be defined on the same grid", qdyn.ErrBadGrid)
		}
		b.timeDependent = b.timeDependent || op.TimeDependent()
	}
	return b, nil
}
