package optimizer

import (
	"fmt"
	"math"

	"github.com/sw965/raven/tensor"
)

// RMSProp replaces AdaGrad's unbounded sum with a decaying average of
// squared gradients, so the per-element scale stays bounded.
//
//	avg = decay*avg + (1-decay)*grad^2
//	param = param - lr*grad / (sqrt(avg) + eps)
type RMSProp struct {
	Base
	LR       float64
	Decay    float64
	Eps      float64
	ClipNorm float64
}

func NewRMSProp(lr, decay, eps, clipNorm float64, schedulerSpec any) (*RMSProp, error) {
	b, err := newBase(lr, schedulerSpec)
	if err != nil {
		return nil, err
	}
	return &RMSProp{Base: b, LR: lr, Decay: decay, Eps: eps, ClipNorm: clipNorm}, nil
}

func (r *RMSProp) Update(param, grad tensor.D1, name string, curLoss float64) (tensor.D1, error) {
	if err := checkLens(param, grad, name); err != nil {
		return nil, err
	}
	lr := r.Scheduler.Rate(r.CurStep, curLoss)

	state, ok := r.Cache[name]
	if !ok {
		state = State{Tensor: tensor.NewD1ZerosLike(grad)}
	}
	if err := checkCachedLen(state.Tensor, param, name); err != nil {
		return nil, err
	}

	grad = tensor.D1ClipL2Norm(grad, r.ClipNorm)

	avg := state.Tensor
	update := make(tensor.D1, len(grad))
	for i, g := range grad {
		avg[i] = r.Decay*avg[i] + (1.0-r.Decay)*g*g
		update[i] = lr * g / (math.Sqrt(avg[i]) + r.Eps)
	}
	r.Cache[name] = state

	return tensor.D1Sub(param, update)
}

func (r *RMSProp) Copy() Optimizer {
	y := *r
	y.Base = r.cloneBase()
	return &y
}

func (r *RMSProp) SetParams(hparams map[string]any, cache Cache) error {
	for k, v := range hparams {
		switch k {
		case "lr":
			if f, ok := floatValue(v); ok {
				r.LR = f
			}
		case "decay":
			if f, ok := floatValue(v); ok {
				r.Decay = f
			}
		case "eps":
			if f, ok := floatValue(v); ok {
				r.Eps = f
			}
		case "clip_norm":
			if f, ok := floatValue(v); ok {
				r.ClipNorm = f
			}
		case "lr_scheduler":
			if err := r.setScheduler(v); err != nil {
				return err
			}
		}
	}
	r.overrideCache(cache)
	return nil
}

func (r *RMSProp) Hyperparameters() map[string]any {
	return map[string]any{
		"id":           "RMSProp",
		"lr":           r.LR,
		"eps":          r.Eps,
		"decay":        r.Decay,
		"clip_norm":    r.ClipNorm,
		"lr_scheduler": r.Scheduler.String(),
	}
}

func (r *RMSProp) String() string {
	return fmt.Sprintf(
		"RMSProp(lr=%v, eps=%v, decay=%v, clip_norm=%s, lr_scheduler=%s)",
		r.LR, r.Eps, r.Decay, clipNormLabel(r.ClipNorm), r.Scheduler,
	)
}
