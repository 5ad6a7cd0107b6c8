package scheduler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scheduler maps a step index (and optionally the current loss) to a
// learning rate. Loss-unaware schedulers ignore curLoss, so callers
// without a loss may pass math.NaN().
// Clone returns a scheduler with no state shared with the receiver, so
// that a copied optimizer cannot mutate the original's schedule (e.g.
// a loss-aware scheduler keeping a loss history).
type Scheduler interface {
	Rate(step int, curLoss float64) float64
	Clone() Scheduler
	fmt.Stringer
}

type Constant struct {
	LR float64
}

func NewConstant(lr float64) Constant {
	return Constant{LR: lr}
}

func (c Constant) Rate(step int, curLoss float64) float64 {
	return c.LR
}

func (c Constant) Clone() Scheduler {
	return c
}

func (c Constant) String() string {
	return fmt.Sprintf("ConstantScheduler(lr=%v)", c.LR)
}

// From resolves a scheduler specification into a Scheduler.
// spec may be nil (constant rate lr), an existing Scheduler instance,
// or a textual form such as "constant" or "ConstantScheduler(lr=0.01)".
// A rate inside the textual form takes precedence over lr; if neither
// supplies a rate, From fails.
func From(spec any, lr float64) (Scheduler, error) {
	switch s := spec.(type) {
	case nil:
		if math.IsNaN(lr) {
			return nil, fmt.Errorf("scheduler: no specification and no learning rate given")
		}
		return Constant{LR: lr}, nil
	case Scheduler:
		return s, nil
	case string:
		return parse(s, lr)
	default:
		return nil, fmt.Errorf("scheduler: cannot resolve a scheduler from %T", spec)
	}
}

// FromString resolves a textual specification that must self-contain its
// rate, e.g. "ConstantScheduler(lr=0.01)".
func FromString(s string) (Scheduler, error) {
	return parse(s, math.NaN())
}

func parse(s string, lr float64) (Scheduler, error) {
	name := strings.TrimSpace(s)
	args := map[string]float64{}

	if i := strings.IndexByte(name, '('); i != -1 {
		if !strings.HasSuffix(name, ")") {
			return nil, fmt.Errorf("scheduler: malformed specification %q", s)
		}
		for _, kv := range strings.Split(name[i+1:len(name)-1], ",") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return nil, fmt.Errorf("scheduler: malformed argument %q in %q", kv, s)
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("scheduler: non-numeric argument %q in %q", kv, s)
			}
			args[strings.TrimSpace(k)] = f
		}
		name = name[:i]
	}

	id := strings.TrimSuffix(strings.ToLower(name), "scheduler")
	switch id {
	case "constant":
		if v, ok := args["lr"]; ok {
			lr = v
		}
		if math.IsNaN(lr) {
			return nil, fmt.Errorf("scheduler: %q does not contain a learning rate", s)
		}
		return Constant{LR: lr}, nil
	default:
		return nil, fmt.Errorf("scheduler: unknown scheduler %q", s)
	}
}
