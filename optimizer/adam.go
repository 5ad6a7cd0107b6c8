package optimizer

import (
	"fmt"
	"math"

	"github.com/sw965/raven/tensor"
)

// Adam keeps decaying estimates of the gradient mean and of the
// squared gradient per parameter, with zero-initialization bias
// corrected by each parameter's own update count.
//
//	mean = decay1*mean + (1-decay1)*grad
//	var  = decay2*var  + (1-decay2)*grad^2
//	param = param - lr * (mean/(1-decay1^t)) / (sqrt(var/(1-decay2^t)) + eps)
//
// t counts updates of the individual parameter name, not optimization
// steps: a name first updated late in training still starts at t=1.
// It is independent of CurStep, which only feeds the scheduler.
type Adam struct {
	Base
	LR       float64
	Decay1   float64
	Decay2   float64
	Eps      float64
	ClipNorm float64
}

func NewAdam(lr, decay1, decay2, eps, clipNorm float64, schedulerSpec any) (*Adam, error) {
	b, err := newBase(lr, schedulerSpec)
	if err != nil {
		return nil, err
	}
	return &Adam{Base: b, LR: lr, Decay1: decay1, Decay2: decay2, Eps: eps, ClipNorm: clipNorm}, nil
}

func (a *Adam) Update(param, grad tensor.D1, name string, curLoss float64) (tensor.D1, error) {
	if err := checkLens(param, grad, name); err != nil {
		return nil, err
	}
	lr := a.Scheduler.Rate(a.CurStep, curLoss)

	state, ok := a.Cache[name]
	if !ok {
		state = State{
			Mean: tensor.NewD1ZerosLike(grad),
			Var:  tensor.NewD1ZerosLike(grad),
		}
	}
	if err := checkCachedLen(state.Mean, param, name); err != nil {
		return nil, err
	}
	if err := checkCachedLen(state.Var, param, name); err != nil {
		return nil, err
	}

	grad = tensor.D1ClipL2Norm(grad, a.ClipNorm)

	state.T += 1
	for i, g := range grad {
		state.Mean[i] = a.Decay1*state.Mean[i] + (1.0-a.Decay1)*g
		state.Var[i] = a.Decay2*state.Var[i] + (1.0-a.Decay2)*g*g
	}
	a.Cache[name] = state

	meanCorrection := 1.0 - math.Pow(a.Decay1, float64(state.T))
	varCorrection := 1.0 - math.Pow(a.Decay2, float64(state.T))

	update := make(tensor.D1, len(grad))
	for i := range update {
		meanHat := state.Mean[i] / meanCorrection
		varHat := state.Var[i] / varCorrection
		update[i] = lr * meanHat / (math.Sqrt(varHat) + a.Eps)
	}

	return tensor.D1Sub(param, update)
}

func (a *Adam) Copy() Optimizer {
	y := *a
	y.Base = a.cloneBase()
	return &y
}

func (a *Adam) SetParams(hparams map[string]any, cache Cache) error {
	for k, v := range hparams {
		switch k {
		case "lr":
			if f, ok := floatValue(v); ok {
				a.LR = f
			}
		case "decay1":
			if f, ok := floatValue(v); ok {
				a.Decay1 = f
			}
		case "decay2":
			if f, ok := floatValue(v); ok {
				a.Decay2 = f
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

func (a *Adam) Hyperparameters() map[string]any {
	return map[string]any{
		"id":           "Adam",
		"lr":           a.LR,
		"eps":          a.Eps,
		"decay1":       a.Decay1,
		"decay2":       a.Decay2,
		"clip_norm":    a.ClipNorm,
		"lr_scheduler": a.Scheduler.String(),
	}
}

func (a *Adam) String() string {
	return fmt.Sprintf(
		"Adam(lr=%v, decay1=%v, decay2=%v, eps=%v, clip_norm=%s, lr_scheduler=%s)",
		a.LR, a.Decay1, a.Decay2, a.Eps, clipNormLabel(a.ClipNorm), a.Scheduler,
	)
}
