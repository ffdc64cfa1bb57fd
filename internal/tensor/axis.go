package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LineFunc transforms one line of a tensor along an axis. dst and src have
// the same length; dst is a scratch buffer that must be filled completely.
type LineFunc func(dst, src []complex128)

// MapAxis applies fn to every one-dimensional line of t along axis and
// returns the assembled result. All other axes are left untouched.
func (t *Tensor) MapAxis(axis int, fn LineFunc) *Tensor {
	t.checkAxis(axis)

	n := t.shape[axis]
	inner := 1
	for _, d := range t.shape[axis+1:] {
		inner *= d
	}
	outer := len(t.data) / max(n*inner, 1)

	r := Zeros(t.shape...)
	src := make([]complex128, n)
	dst := make([]complex128, n)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*n*inner + in
			for k := 0; k < n; k++ {
				src[k] = t.data[base+k*inner]
			}
			fn(dst, src)
			for k := 0; k < n; k++ {
				r.data[base+k*inner] = dst[k]
			}
		}
	}
	return r
}

// Contract multiplies the matrix m onto the given axis, that is
// out_i = sum_j m_ij in_j. With transpose set, m_ji is used instead, without
// complex conjugation. m must be square with the size of the axis.
//
// gonum offers no complex matrix product, so the lines are multiplied here
// against the raw row-major storage of m.
func (t *Tensor) Contract(m *mat.CDense, axis int, transpose bool) *Tensor {
	t.checkAxis(axis)
	r, c := m.Dims()
	n := t.shape[axis]
	if r != n || c != n {
		panic(fmt.Sprintf("tensor: cannot contract %dx%d matrix with axis of size %d", r, c, n))
	}

	raw := m.RawCMatrix()
	elems := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		if !transpose {
			copy(elems[i*n:(i+1)*n], raw.Data[i*raw.Stride:i*raw.Stride+n])
			continue
		}
		for j := 0; j < n; j++ {
			elems[i*n+j] = raw.Data[j*raw.Stride+i]
		}
	}

	return t.MapAxis(axis, func(dst, src []complex128) {
		for i := 0; i < n; i++ {
			var s complex128
			row := elems[i*n : (i+1)*n]
			for j, v := range src {
				s += row[j] * v
			}
			dst[i] = s
		}
	})
}

// Mul returns the elementwise product of t and o. The shape of o must have
// the same rank as t, and each of its dimensions must either match t or be
// one, in which case the values are repeated along that axis.
func (t *Tensor) Mul(o *Tensor) *Tensor {
	if len(o.shape) != len(t.shape) {
		panic(fmt.Sprintf("tensor: cannot broadcast %v onto %v", o.shape, t.shape))
	}

	rank := len(t.shape)
	strides := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		switch o.shape[i] {
		case t.shape[i]:
			strides[i] = stride
		case 1:
			strides[i] = 0
		default:
			panic(fmt.Sprintf("tensor: cannot broadcast %v onto %v", o.shape, t.shape))
		}
		stride *= o.shape[i]
	}

	r := Zeros(t.shape...)
	if len(r.data) == 0 {
		return r
	}

	idx := make([]int, rank)
	offset := 0
	for k, v := range t.data {
		r.data[k] = v * o.data[offset]

		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			offset += strides[i]
			if idx[i] < t.shape[i] {
				break
			}
			offset -= strides[i] * idx[i]
			idx[i] = 0
		}
	}
	return r
}

// Broadcast reshapes a vector into a tensor of the given rank whose only
// non-singleton dimension is axis.
func Broadcast(v []complex128, rank, axis int) *Tensor {
	if axis < 0 || axis >= rank {
		panic(fmt.Sprintf("tensor: axis %d out of range for rank %d", axis, rank))
	}
	shape := make([]int, rank)
	for i := range shape {
		shape[i] = 1
	}
	shape[axis] = len(v)
	d := make([]complex128, len(v))
	copy(d, v)
	return &Tensor{shape: shape, data: d}
}

func (t *Tensor) checkAxis(axis int) {
	if axis < 0 || axis >= len(t.shape) {
		panic(fmt.Sprintf("tensor: axis %d out of range for rank %d", axis, len(t.shape)))
	}
}
