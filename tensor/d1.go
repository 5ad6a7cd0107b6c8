package tensor

import (
	"fmt"
	"math"

	"github.com/sw965/omw/fn"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

type D1 []float64

func (d1 D1) AddScalar(s float64) {
	floats.AddConst(s, d1)
}

func (d1 D1) Add(other D1) error {
	if len(d1) != len(other) {
		return fmt.Errorf("tensor.D1 length mismatch: %d != %d", len(d1), len(other))
	}
	floats.Add(d1, other)
	return nil
}

func (d1 D1) SubScalar(s float64) {
	floats.AddConst(-s, d1)
}

func (d1 D1) Sub(other D1) error {
	if len(d1) != len(other) {
		return fmt.Errorf("tensor.D1 length mismatch: %d != %d", len(d1), len(other))
	}
	floats.Sub(d1, other)
	return nil
}

func (d1 D1) MulScalar(s float64) {
	floats.Scale(s, d1)
}

func (d1 D1) Mul(other D1) error {
	if len(d1) != len(other) {
		return fmt.Errorf("tensor.D1 length mismatch: %d != %d", len(d1), len(other))
	}
	floats.Mul(d1, other)
	return nil
}

func (d1 D1) DivScalar(s float64) {
	for i := range d1 {
		d1[i] /= s
	}
}

func (d1 D1) Div(other D1) error {
	if len(d1) != len(other) {
		return fmt.Errorf("tensor.D1 length mismatch: %d != %d", len(d1), len(other))
	}
	floats.Div(d1, other)
	return nil
}

func (d1 D1) Clone() D1 {
	return slices.Clone(d1)
}

func (d1 D1) Copy(src D1) {
	copy(d1, src)
}

func (d1 D1) MapFunc(f func(float64) float64) D1 {
	return fn.Map[D1](d1, f)
}

func (d1 D1) Square() D1 {
	y := make(D1, len(d1))
	floats.MulTo(y, d1, d1)
	return y
}

func (d1 D1) Sqrt() D1 {
	return fn.Map[D1](d1, math.Sqrt)
}

func (d1 D1) L2Norm() float64 {
	return floats.Norm(d1, 2)
}

func (d1 D1) Reshape2D(r, c int) (D2, error) {
	if r*c != len(d1) {
		return nil, fmt.Errorf("cannot reshape tensor.D1 of length %d into (%d, %d)", len(d1), r, c)
	}
	y := make(D2, r)
	for i := range y {
		y[i] = slices.Clone(d1[i*c : (i+1)*c])
	}
	return y, nil
}

func D1AddScalar(d1 D1, s float64) D1 {
	y := slices.Clone(d1)
	y.AddScalar(s)
	return y
}

func D1Add(a, b D1) (D1, error) {
	y := slices.Clone(a)
	err := y.Add(b)
	return y, err
}

func D1SubScalar(d1 D1, s float64) D1 {
	y := slices.Clone(d1)
	y.SubScalar(s)
	return y
}

func D1Sub(a, b D1) (D1, error) {
	y := slices.Clone(a)
	err := y.Sub(b)
	return y, err
}

func D1MulScalar(d1 D1, s float64) D1 {
	y := slices.Clone(d1)
	y.MulScalar(s)
	return y
}

func D1Mul(a, b D1) (D1, error) {
	y := slices.Clone(a)
	err := y.Mul(b)
	return y, err
}

func D1DivScalar(d1 D1, s float64) D1 {
	y := slices.Clone(d1)
	y.DivScalar(s)
	return y
}

func D1Div(a, b D1) (D1, error) {
	y := slices.Clone(a)
	err := y.Div(b)
	return y, err
}

// D1ClipL2Norm rescales x so that its L2 norm does not exceed maxNorm.
// maxNorm <= 0 means no limit. The input is returned as-is when no
// rescaling is needed.
func D1ClipL2Norm(x D1, maxNorm float64) D1 {
	if maxNorm <= 0.0 {
		return x
	}
	norm := floats.Norm(x, 2)
	if norm <= maxNorm {
		return x
	}
	y := slices.Clone(x)
	y.MulScalar(maxNorm / norm)
	return y
}
