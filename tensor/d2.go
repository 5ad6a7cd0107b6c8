package tensor

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type D2 []D1

func (d2 D2) AddScalar(s float64) {
	for i := range d2 {
		d2[i].AddScalar(s)
	}
}

func (d2 D2) Add(other D2) error {
	if len(d2) != len(other) {
		return fmt.Errorf("tensor.D2 length mismatch: %d != %d", len(d2), len(other))
	}
	for i := range d2 {
		if err := d2[i].Add(other[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d2 D2) Sub(other D2) error {
	if len(d2) != len(other) {
		return fmt.Errorf("tensor.D2 length mismatch: %d != %d", len(d2), len(other))
	}
	for i := range d2 {
		if err := d2[i].Sub(other[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d2 D2) MulScalar(s float64) {
	for i := range d2 {
		d2[i].MulScalar(s)
	}
}

func (d2 D2) Clone() D2 {
	y := make(D2, len(d2))
	for i := range y {
		y[i] = slices.Clone(d2[i])
	}
	return y
}

func (d2 D2) Copy(src D2) {
	for i := range d2 {
		d2[i].Copy(src[i])
	}
}

func (d2 D2) Flatten() D1 {
	n := 0
	for i := range d2 {
		n += len(d2[i])
	}
	y := make(D1, 0, n)
	for i := range d2 {
		y = append(y, d2[i]...)
	}
	return y
}

func (d2 D2) Col(j int) D1 {
	y := make(D1, len(d2))
	for i := range d2 {
		y[i] = d2[i][j]
	}
	return y
}
