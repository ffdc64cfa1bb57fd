// Package tensor implements the dense complex arrays that back every state
// and operator of the engine.
//
// A Tensor is a row-major array of complex128 values with an arbitrary rank.
// Tensors are treated as immutable values: every operation allocates a new
// result and never writes into its operands. Like gonum's mat package, the
// functions here panic on programmer errors such as mismatched shapes or an
// axis out of range.
package tensor

import (
	"fmt"
	"math"
	"math/cmplx"
)

type Tensor struct {
	shape []int
	data  []complex128
}

// New wraps data into a tensor of the given shape. The data slice is not
// copied and must not be modified afterwards.
func New(shape []int, data []complex128) *Tensor {
	if size(shape) != len(data) {
		panic(fmt.Sprintf("tensor: shape %v does not match %d elements", shape, len(data)))
	}
	return &Tensor{shape: cloneInts(shape), data: data}
}

// FromReal copies real values into a new complex tensor.
func FromReal(shape []int, data []float64) *Tensor {
	c := make([]complex128, len(data))
	for i, v := range data {
		c[i] = complex(v, 0)
	}
	return New(shape, c)
}

func Zeros(shape ...int) *Tensor {
	return &Tensor{shape: cloneInts(shape), data: make([]complex128, size(shape))}
}

// Full returns a tensor with every element set to v.
func Full(v complex128, shape ...int) *Tensor {
	t := Zeros(shape...)
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

// Identity returns the n x n unit matrix.
func Identity(n int) *Tensor {
	t := Zeros(n, n)
	for i := 0; i < n; i++ {
		t.data[i*n+i] = 1
	}
	return t
}

func (t *Tensor) Shape() []int { return cloneInts(t.shape) }
func (t *Tensor) Rank() int    { return len(t.shape) }
func (t *Tensor) Len() int     { return len(t.data) }
func (t *Tensor) Dim(i int) int { return t.shape[i] }

// Data returns the backing slice in row-major order. Callers must treat it as
// read-only.
func (t *Tensor) Data() []complex128 { return t.data }

// At returns the element at the given multi-index.
func (t *Tensor) At(idx ...int) complex128 {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index of rank %d for tensor of rank %d", len(idx), len(t.shape)))
	}
	offset := 0
	for i, k := range idx {
		if k < 0 || k >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for axis %d of size %d", k, i, t.shape[i]))
		}
		offset = offset*t.shape[i] + k
	}
	return t.data[offset]
}

// HasShape reports whether the tensor has exactly the given shape.
func (t *Tensor) HasShape(shape []int) bool {
	return ShapeEqual(t.shape, shape)
}

// Reshape returns a view of the same elements with a different shape.
func (t *Tensor) Reshape(shape ...int) *Tensor {
	if size(shape) != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v into %v", t.shape, shape))
	}
	return &Tensor{shape: cloneInts(shape), data: t.data}
}

func (t *Tensor) Clone() *Tensor {
	d := make([]complex128, len(t.data))
	copy(d, t.data)
	return &Tensor{shape: cloneInts(t.shape), data: d}
}

// Add returns t + o. Both tensors must have the same shape.
func (t *Tensor) Add(o *Tensor) *Tensor {
	t.mustMatch(o)
	r := t.Clone()
	for i, v := range o.data {
		r.data[i] += v
	}
	return r
}

// Sub returns t - o. Both tensors must have the same shape.
func (t *Tensor) Sub(o *Tensor) *Tensor {
	t.mustMatch(o)
	r := t.Clone()
	for i, v := range o.data {
		r.data[i] -= v
	}
	return r
}

// AddScaled returns t + c*o.
func (t *Tensor) AddScaled(c complex128, o *Tensor) *Tensor {
	t.mustMatch(o)
	r := t.Clone()
	for i, v := range o.data {
		r.data[i] += c * v
	}
	return r
}

func (t *Tensor) Scale(c complex128) *Tensor {
	r := t.Clone()
	for i := range r.data {
		r.data[i] *= c
	}
	return r
}

func (t *Tensor) AddScalar(c complex128) *Tensor {
	r := t.Clone()
	for i := range r.data {
		r.data[i] += c
	}
	return r
}

func (t *Tensor) Conj() *Tensor {
	r := t.Clone()
	for i, v := range r.data {
		r.data[i] = cmplx.Conj(v)
	}
	return r
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() complex128 {
	var s complex128
	for _, v := range t.data {
		s += v
	}
	return s
}

// SquaredNorm returns the sum of |x|^2 over all elements.
func (t *Tensor) SquaredNorm() float64 {
	s := 0.0
	for _, v := range t.data {
		s += real(v)*real(v) + imag(v)*imag(v)
	}
	return s
}

// MaxAbsDiff returns max |t - o| over all elements; useful in tests.
func (t *Tensor) MaxAbsDiff(o *Tensor) float64 {
	t.mustMatch(o)
	m := 0.0
	for i, v := range t.data {
		m = math.Max(m, cmplx.Abs(v-o.data[i]))
	}
	return m
}

// Dot returns sum(conj(a) * b) over the flattened tensors.
func Dot(a, b *Tensor) complex128 {
	if len(a.data) != len(b.data) {
		panic(fmt.Sprintf("tensor: dot of %d and %d elements", len(a.data), len(b.data)))
	}
	var s complex128
	for i, v := range a.data {
		s += cmplx.Conj(v) * b.data[i]
	}
	return s
}

// Outer returns the tensor product a ⊗ b with shape a.shape + b.shape.
func Outer(a, b *Tensor) *Tensor {
	shape := append(cloneInts(a.shape), b.shape...)
	r := Zeros(shape...)
	nb := len(b.data)
	for i, x := range a.data {
		row := r.data[i*nb : (i+1)*nb]
		for j, y := range b.data {
			row[j] = x * y
		}
	}
	return r
}

// Diagonal interprets the tensor as an n x n matrix and returns its diagonal.
func (t *Tensor) Diagonal(n int) []complex128 {
	if n*n != len(t.data) {
		panic(fmt.Sprintf("tensor: %d elements do not form a %dx%d matrix", len(t.data), n, n))
	}
	d := make([]complex128, n)
	for i := range d {
		d[i] = t.data[i*n+i]
	}
	return d
}

func (t *Tensor) mustMatch(o *Tensor) {
	if !ShapeEqual(t.shape, o.shape) {
		panic(fmt.Sprintf("tensor: shape mismatch %v vs %v", t.shape, o.shape))
	}
}

// ShapeEqual compares two shapes element by element.
func ShapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("tensor: negative dimension in %v", shape))
		}
		n *= d
	}
	return n
}

func cloneInts(s []int) []int {
	c := make([]int, len(s))
	copy(c, s)
	return c
}
