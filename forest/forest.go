package forest

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	omwmath "github.com/sw965/omw/math"
	omwrand "github.com/sw965/omw/math/rand"
	omwslices "github.com/sw965/omw/slices"
	"github.com/sw965/raven/tensor"
	"gonum.org/v1/gonum/stat"
)

type Criterion string

const (
	Entropy Criterion = "entropy"
	Gini    Criterion = "gini"
	MSE     Criterion = "mse"
)

type node struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *node
	Right     *node
}

// DecisionTree is a CART tree. Classification trees split by entropy or
// gini and predict the majority class label; regression trees split by
// MSE and predict the leaf mean. MaxDepth 0 grows until the leaves are
// pure. NFeatures is the number of features sampled per split; 0 uses
// all of them.
type DecisionTree struct {
	MaxDepth   int
	NFeatures  int
	Criterion  Criterion
	Classifier bool
	root       *node
}

func (t *DecisionTree) Fit(X tensor.D2, y tensor.D1, r *rand.Rand) error {
	if len(X) != len(y) {
		return fmt.Errorf("forest: sample count mismatch: %d != %d", len(X), len(y))
	}
	if len(X) == 0 {
		return fmt.Errorf("forest: empty training data")
	}
	if t.Classifier && t.Criterion == MSE {
		return fmt.Errorf("forest: criterion %q is for regression trees", t.Criterion)
	}
	if !t.Classifier && t.Criterion != MSE {
		return fmt.Errorf("forest: criterion %q is for classification trees", t.Criterion)
	}
	t.root = t.grow(X, y, 0, r)
	return nil
}

func (t *DecisionTree) Predict(x tensor.D1) (float64, error) {
	if t.root == nil {
		return 0.0, fmt.Errorf("forest: tree is not fitted")
	}
	n := t.root
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value, nil
}

func (t *DecisionTree) grow(X tensor.D2, y tensor.D1, depth int, r *rand.Rand) *node {
	if isPure(y) || len(y) < 2 || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return &node{Leaf: true, Value: t.leafValue(y)}
	}

	nFeatures := len(X[0])
	k := t.NFeatures
	if k <= 0 || k > nFeatures {
		k = nFeatures
	}
	featureIdxs := r.Perm(nFeatures)[:k]

	parent := t.impurity(y)
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	for _, j := range featureIdxs {
		col := X.Col(j)
		for _, threshold := range splitCandidates(col) {
			leftY, rightY := partitionLabels(col, y, threshold)
			if len(leftY) == 0 || len(rightY) == 0 {
				continue
			}
			n := float64(len(y))
			children := (float64(len(leftY))*t.impurity(leftY) + float64(len(rightY))*t.impurity(rightY)) / n
			gain := parent - children
			if gain > bestGain {
				bestGain = gain
				bestFeature = j
				bestThreshold = threshold
			}
		}
	}

	if bestFeature == -1 {
		return &node{Leaf: true, Value: t.leafValue(y)}
	}

	col := X.Col(bestFeature)
	leftX := make(tensor.D2, 0, len(X))
	rightX := make(tensor.D2, 0, len(X))
	leftY := make(tensor.D1, 0, len(y))
	rightY := make(tensor.D1, 0, len(y))
	for i := range X {
		if col[i] <= bestThreshold {
			leftX = append(leftX, X[i])
			leftY = append(leftY, y[i])
		} else {
			rightX = append(rightX, X[i])
			rightY = append(rightY, y[i])
		}
	}

	return &node{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      t.grow(leftX, leftY, depth+1, r),
		Right:     t.grow(rightX, rightY, depth+1, r),
	}
}

func (t *DecisionTree) leafValue(y tensor.D1) float64 {
	if t.Classifier {
		return majorityLabel(y)
	}
	return stat.Mean(y, nil)
}

func (t *DecisionTree) impurity(y tensor.D1) float64 {
	switch t.Criterion {
	case Gini:
		g := 1.0
		for _, p := range labelProbs(y) {
			g -= p * p
		}
		return g
	case MSE:
		mean := stat.Mean(y, nil)
		sq := make(tensor.D1, len(y))
		for i, yi := range y {
			d := yi - mean
			sq[i] = d * d
		}
		return omwmath.Sum(sq...) / float64(len(y))
	default:
		h := 0.0
		for _, p := range labelProbs(y) {
			h -= p * math.Log2(p)
		}
		return h
	}
}

func labelProbs(y tensor.D1) map[float64]float64 {
	probs := make(map[float64]float64, 2)
	for _, yi := range y {
		probs[yi] += 1.0
	}
	n := float64(len(y))
	for label := range probs {
		probs[label] /= n
	}
	return probs
}

func majorityLabel(y tensor.D1) float64 {
	counts := make(map[float64]int, 2)
	for _, yi := range y {
		counts[yi] += 1
	}
	best := y[0]
	for label, count := range counts {
		// 同数の場合は小さいラベルを選ぶ
		if count > counts[best] || (count == counts[best] && label < best) {
			best = label
		}
	}
	return best
}

func isPure(y tensor.D1) bool {
	for _, yi := range y {
		if yi != y[0] {
			return false
		}
	}
	return true
}

func splitCandidates(col tensor.D1) tensor.D1 {
	sorted := col.Clone()
	sort.Float64s(sorted)
	candidates := make(tensor.D1, 0, len(sorted)-1)
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i] != sorted[i+1] {
			candidates = append(candidates, (sorted[i]+sorted[i+1])/2.0)
		}
	}
	return candidates
}

func partitionLabels(col, y tensor.D1, threshold float64) (tensor.D1, tensor.D1) {
	left := make(tensor.D1, 0, len(y))
	right := make(tensor.D1, 0, len(y))
	for i, v := range col {
		if v <= threshold {
			left = append(left, y[i])
		} else {
			right = append(right, y[i])
		}
	}
	return left, right
}

// RandomForest fits NTrees decision trees, each on an N-with-replacement
// bootstrap sample of the training data, and aggregates their
// predictions: majority vote for classification, mean for regression.
// The trees share no state and are fit independently.
type RandomForest struct {
	NTrees     int
	MaxDepth   int
	NFeatures  int
	Criterion  Criterion
	Classifier bool
	Trees      []*DecisionTree
}

func (f *RandomForest) Fit(X tensor.D2, y tensor.D1, r *rand.Rand) error {
	if len(X) != len(y) {
		return fmt.Errorf("forest: sample count mismatch: %d != %d", len(X), len(y))
	}
	f.Trees = make([]*DecisionTree, 0, f.NTrees)
	n := len(X)
	for i := 0; i < f.NTrees; i++ {
		idxs := omwrand.Ints(n, 0, n, r)
		sampleX := omwslices.ElementsByIndices(X, idxs...)
		sampleY := omwslices.ElementsByIndices(y, idxs...)
		tree := &DecisionTree{
			MaxDepth:   f.MaxDepth,
			NFeatures:  f.NFeatures,
			Criterion:  f.Criterion,
			Classifier: f.Classifier,
		}
		if err := tree.Fit(sampleX, sampleY, r); err != nil {
			return err
		}
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

func (f *RandomForest) Predict(x tensor.D1) (float64, error) {
	if len(f.Trees) == 0 {
		return 0.0, fmt.Errorf("forest: forest is not fitted")
	}
	preds := make(tensor.D1, len(f.Trees))
	for i, tree := range f.Trees {
		p, err := tree.Predict(x)
		if err != nil {
			return 0.0, err
		}
		preds[i] = p
	}
	if f.Classifier {
		return majorityLabel(preds), nil
	}
	return stat.Mean(preds, nil), nil
}

func (f *RandomForest) PredictAll(X tensor.D2) (tensor.D1, error) {
	y := make(tensor.D1, len(X))
	for i := range X {
		p, err := f.Predict(X[i])
		if err != nil {
			return nil, err
		}
		y[i] = p
	}
	return y, nil
}
