package tensor_test

import (
	"math"
	"testing"

	omwrand "github.com/sw965/omw/math/rand"
	"github.com/sw965/raven/tensor"
)

func TestD1Add(t *testing.T) {
	x := tensor.D1{1.0, 2.0, 3.0}
	y, err := tensor.D1Add(x, tensor.D1{10.0, 20.0, 30.0})
	if err != nil {
		t.Fatal(err)
	}
	expected := tensor.D1{11.0, 22.0, 33.0}
	for i := range y {
		if y[i] != expected[i] {
			t.Errorf("y[%d] = %v, expected %v", i, y[i], expected[i])
		}
	}

	// 元のスライスは変化しない
	if x[0] != 1.0 {
		t.Errorf("input was mutated: %v", x)
	}

	if _, err := tensor.D1Add(x, tensor.D1{1.0}); err == nil {
		t.Errorf("length mismatch should be an error")
	}
}

func TestD1SubMismatch(t *testing.T) {
	x := tensor.D1{1.0, 2.0}
	if err := x.Sub(tensor.D1{1.0, 2.0, 3.0}); err == nil {
		t.Errorf("length mismatch should be an error")
	}
}

func TestD1SquareSqrt(t *testing.T) {
	x := tensor.D1{2.0, 3.0, 4.0}
	sq := x.Square()
	expected := tensor.D1{4.0, 9.0, 16.0}
	for i := range sq {
		if sq[i] != expected[i] {
			t.Errorf("sq[%d] = %v, expected %v", i, sq[i], expected[i])
		}
	}

	back := sq.Sqrt()
	for i := range back {
		if math.Abs(back[i]-x[i]) > 1e-12 {
			t.Errorf("back[%d] = %v, expected %v", i, back[i], x[i])
		}
	}
}

func TestD1L2Norm(t *testing.T) {
	x := tensor.D1{3.0, 4.0}
	if norm := x.L2Norm(); math.Abs(norm-5.0) > 1e-12 {
		t.Errorf("norm = %v, expected 5", norm)
	}
}

func TestD1ClipL2Norm(t *testing.T) {
	r := omwrand.NewMt19937()
	x := tensor.NewD1RandUniform(16, -10.0, 10.0, r)

	maxNorm := 1.0
	clipped := tensor.D1ClipL2Norm(x, maxNorm)
	if norm := clipped.L2Norm(); math.Abs(norm-maxNorm) > 1e-9 {
		t.Errorf("clipped norm = %v, expected %v", norm, maxNorm)
	}

	// 上限以下の場合はそのまま
	small := tensor.D1{0.1, 0.2}
	unclipped := tensor.D1ClipL2Norm(small, maxNorm)
	for i := range small {
		if unclipped[i] != small[i] {
			t.Errorf("unclipped[%d] = %v, expected %v", i, unclipped[i], small[i])
		}
	}

	// maxNorm <= 0 は制限なし
	unlimited := tensor.D1ClipL2Norm(x, 0.0)
	for i := range x {
		if unlimited[i] != x[i] {
			t.Errorf("unlimited[%d] = %v, expected %v", i, unlimited[i], x[i])
		}
	}
}

func TestD1Reshape2DFlatten(t *testing.T) {
	x := tensor.D1{1.0, 2.0, 3.0, 4.0, 5.0, 6.0}
	d2, err := x.Reshape2D(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(d2) != 2 || len(d2[0]) != 3 {
		t.Fatalf("unexpected shape: (%d, %d)", len(d2), len(d2[0]))
	}
	if d2[1][0] != 4.0 {
		t.Errorf("d2[1][0] = %v, expected 4", d2[1][0])
	}

	flat := d2.Flatten()
	for i := range x {
		if flat[i] != x[i] {
			t.Errorf("flat[%d] = %v, expected %v", i, flat[i], x[i])
		}
	}

	if _, err := x.Reshape2D(4, 2); err == nil {
		t.Errorf("bad shape should be an error")
	}
}
