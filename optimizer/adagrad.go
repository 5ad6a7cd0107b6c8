package optimizer

import (
	"fmt"
	"math"

	"github.com/sw965/raven/tensor"
)

// AdaGrad scales each element's step by the inverse square root of its
// cumulative squared gradient.
//
//	sum = sum + grad^2
//	param = param - lr*grad / (sqrt(sum) + eps)
//
// The sum never decreases, so the effective learning rate decays
// monotonically; there is no reset mechanism.
type AdaGrad struct {
	Base
	LR       float64
	Eps      float64
	ClipNorm float64
}

func NewAdaGrad(lr, eps, clipNorm float64, schedulerSpec any) (*AdaGrad, error) {
	b, err := newBase(lr, schedulerSpec)
	if err != nil {
		return nil, err
	}
	return &AdaGrad{Base: b, LR: lr, Eps: eps, ClipNorm: clipNorm}, nil
}

func (a *AdaGrad) Update(param, grad tensor.D1, name string, curLoss float64) (tensor.D1, error) {
	if err := checkLens(param, grad, name); err != nil {
		return nil, err
	}
	lr := a.Scheduler.Rate(a.CurStep, curLoss)

	state, ok := a.Cache[name]
	if !ok {
		state = State{Tensor: tensor.NewD1ZerosLike(grad)}
	}
	if err := checkCachedLen(state.Tensor, param, name); err != nil {
		return nil, err
	}

	grad = tensor.D1ClipL2Norm(grad, a.ClipNorm)

	sum := state.Tensor
	update := make(tensor.D1, len(grad))
	for i, g := range grad {
		sum[i] += g * g
		update[i] = lr * g / (math.Sqrt(sum[i]) + a.Eps)
	}
	a.Cache[name] = state

	return tensor.D1Sub(param, update)
}

func (a *AdaGrad) Copy() Optimizer {
	y := *a
	y.Base = a.cloneBase()
	return &y
}

func (a *AdaGrad) SetParams(hparams map[string]any, cache Cache) error {
	for k, v := range hparams {
		switch k {
		case "lr":
			if f, ok := floatValue(v); ok {
				a.LR = f
			}
		case "eps":
			if f, ok := floatValue(v); ok {
				a.Eps = f
			}
		case "clip_norm":
			if f, ok := floatValue(v); ok {
				a.ClipNorm = f
			}
		case "lr_scheduler":
			if err := a.setScheduler(v); err != nil {
				return err
			}
		}
	}
	a.overrideCache(cache)
	return nil
}

func (a *AdaGrad) Hyperparameters() map[string]any {
	return map[string]any{
		"id":           "AdaGrad",
		"lr":           a.LR,
		"eps":          a.Eps,
		"clip_norm":    a.ClipNorm,
		"lr_scheduler": a.Scheduler.String(),
	}
}

func (a *AdaGrad) String() string {
	return fmt.Sprintf(
		"AdaGrad(lr=%v, eps=%v, clip_norm=%s, lr_scheduler=%s)",
		a.LR, a.Eps, clipNormLabel(a.ClipNorm), a.Scheduler,
	)
}
