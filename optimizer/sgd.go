package optimizer

import (
	"fmt"

	"github.com/sw965/raven/tensor"
)

// SGD is stochastic gradient descent with momentum.
//
//	velocity = momentum*velocity + lr*grad
//	param = param - velocity
//
// Momentum 0 is plain gradient descent.
type SGD struct {
	Base
	LR       float64
	Momentum float64
	ClipNorm float64
}

// NewSGD resolves schedulerSpec via scheduler.From; nil yields a
// constant rate equal to lr. clipNorm <= 0 disables gradient clipping.
func NewSGD(lr, momentum, clipNorm float64, schedulerSpec any) (*SGD, error) {
	b, err := newBase(lr, schedulerSpec)
	if err != nil {
		return nil, err
	}
	return &SGD{Base: b, LR: lr, Momentum: momentum, ClipNorm: clipNorm}, nil
}

func (s *SGD) Update(param, grad tensor.D1, name string, curLoss float64) (tensor.D1, error) {
	if err := checkLens(param, grad, name); err != nil {
		return nil, err
	}
	lr := s.Scheduler.Rate(s.CurStep, curLoss)

	state, ok := s.Cache[name]
	if !ok {
		state = State{Tensor: tensor.NewD1ZerosLike(grad)}
	}
	if err := checkCachedLen(state.Tensor, param, name); err != nil {
		return nil, err
	}

	grad = tensor.D1ClipL2Norm(grad, s.ClipNorm)

	velocity := make(tensor.D1, len(grad))
	for i := range velocity {
		velocity[i] = s.Momentum*state.Tensor[i] + lr*grad[i]
	}
	state.Tensor = velocity
	s.Cache[name] = state

	return tensor.D1Sub(param, velocity)
}

func (s *SGD) Copy() Optimizer {
	y := *s
	y.Base = s.cloneBase()
	return &y
}

func (s *SGD) SetParams(hparams map[string]any, cache Cache) error {
	for k, v := range hparams {
		switch k {
		case "lr":
			if f, ok := floatValue(v); ok {
				s.LR = f
			}
		case "momentum":
			if f, ok := floatValue(v); ok {
				s.Momentum = f
			}
		case "clip_norm":
			if f, ok := floatValue(v); ok {
				s.ClipNorm = f
			}
		case "lr_scheduler":
			if err := s.setScheduler(v); err != nil {
				return err
			}
		}
	}
	s.overrideCache(cache)
	return nil
}

func (s *SGD) Hyperparameters() map[string]any {
	return map[string]any{
		"id":           "SGD",
		"lr":           s.LR,
		"momentum":     s.Momentum,
		"clip_norm":    s.ClipNorm,
		"lr_scheduler": s.Scheduler.String(),
	}
}

func (s *SGD) String() string {
	return fmt.Sprintf(
		"SGD(lr=%v, momentum=%v, clip_norm=%s, lr_scheduler=%s)",
		s.LR, s.Momentum, clipNormLabel(s.ClipNorm), s.Scheduler,
	)
}
