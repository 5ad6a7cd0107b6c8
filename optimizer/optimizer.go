package optimizer

import (
	"fmt"

	omwjson "github.com/sw965/omw/json"
	"github.com/sw965/raven/scheduler"
	"github.com/sw965/raven/tensor"
	"golang.org/x/exp/slices"
)

// State is the cached per-parameter state of an optimizer.
// Tensor holds the single running tensor of SGD (velocity),
// AdaGrad (cumulative squared-gradient sum) and RMSProp (decayed
// squared-gradient average). T, Mean and Var are used by Adam only.
type State struct {
	Tensor tensor.D1 `json:"tensor,omitempty"`
	T      int       `json:"t,omitempty"`
	Mean   tensor.D1 `json:"mean,omitempty"`
	Var    tensor.D1 `json:"var,omitempty"`
}

func (s State) Clone() State {
	return State{
		Tensor: slices.Clone(s.Tensor),
		T:      s.T,
		Mean:   slices.Clone(s.Mean),
		Var:    slices.Clone(s.Var),
	}
}

// Cache maps a parameter name to its State. An entry is created lazily
// the first time a name is updated and lives for the optimizer's
// lifetime. The map is mutated in place during Update and is not
// synchronized; concurrent callers must each own a disjoint set of
// names.
type Cache map[string]State

func (c Cache) Clone() Cache {
	y := make(Cache, len(c))
	for name, state := range c {
		y[name] = state.Clone()
	}
	return y
}

func LoadCacheJSON(path string) (Cache, error) {
	return omwjson.Load[Cache](path)
}

func (c *Cache) WriteJSON(path string) error {
	return omwjson.Write[Cache](c, path)
}

// Optimizer updates one named parameter per call. Callers pass
// math.NaN() for curLoss when no loss is available; only loss-aware
// schedulers read it.
type Optimizer interface {
	Update(param, grad tensor.D1, name string, curLoss float64) (tensor.D1, error)
	Step()
	ResetStep()
	Copy() Optimizer
	SetParams(hparams map[string]any, cache Cache) error
	Hyperparameters() map[string]any
	fmt.Stringer
}

// Base carries the state shared by all optimizers. CurStep feeds the
// scheduler and is advanced only by an explicit Step call, once per
// optimization step, never inside Update.
type Base struct {
	Scheduler scheduler.Scheduler
	CurStep   int
	Cache     Cache
}

func newBase(lr float64, schedulerSpec any) (Base, error) {
	sch, err := scheduler.From(schedulerSpec, lr)
	if err != nil {
		return Base{}, err
	}
	return Base{Scheduler: sch, Cache: Cache{}}, nil
}

func (b *Base) Step() {
	b.CurStep += 1
}

func (b *Base) ResetStep() {
	b.CurStep = 0
}

func (b *Base) cloneBase() Base {
	return Base{
		Scheduler: b.Scheduler.Clone(),
		CurStep:   b.CurStep,
		Cache:     b.Cache.Clone(),
	}
}

// overrideCache replaces the State of names that already exist in the
// cache. Unknown names are ignored, never inserted.
func (b *Base) overrideCache(c Cache) {
	for name, state := range c {
		if _, ok := b.Cache[name]; ok {
			b.Cache[name] = state
		}
	}
}

func (b *Base) setScheduler(v any) error {
	switch s := v.(type) {
	case string:
		sch, err := scheduler.FromString(s)
		if err != nil {
			return err
		}
		b.Scheduler = sch
	case scheduler.Scheduler:
		b.Scheduler = s
	default:
		return fmt.Errorf("optimizer: cannot resolve lr_scheduler from %T", v)
	}
	return nil
}

func checkLens(param, grad tensor.D1, name string) error {
	if len(param) != len(grad) {
		return fmt.Errorf("optimizer: parameter %q: param length (%d) != grad length (%d)", name, len(param), len(grad))
	}
	return nil
}

func checkCachedLen(cached tensor.D1, param tensor.D1, name string) error {
	if len(cached) != len(param) {
		return fmt.Errorf("optimizer: parameter %q: cached state length (%d) != param length (%d)", name, len(cached), len(param))
	}
	return nil
}

func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0.0, false
}

func clipNormLabel(clipNorm float64) string {
	if clipNorm <= 0.0 {
		return "none"
	}
	return fmt.Sprintf("%v", clipNorm)
}
