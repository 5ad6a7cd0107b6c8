package tensor

import (
	"math/rand"

	omwrand "github.com/sw965/omw/math/rand"
)

func NewD1Zeros(n int) D1 {
	return make(D1, n)
}

func NewD1ZerosLike(d1 D1) D1 {
	return NewD1Zeros(len(d1))
}

func NewD1Ones(n int) D1 {
	y := make(D1, n)
	for i := range y {
		y[i] = 1.0
	}
	return y
}

func NewD1OnesLike(d1 D1) D1 {
	return NewD1Ones(len(d1))
}

func NewD1RandUniform(n int, min, max float64, r *rand.Rand) D1 {
	y := make(D1, n)
	for i := range y {
		y[i] = omwrand.Float64Uniform(min, max, r)
	}
	return y
}
