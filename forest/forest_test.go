package forest_test

import (
	"math"
	"testing"

	omwrand "github.com/sw965/omw/math/rand"
	"github.com/sw965/raven/forest"
	"github.com/sw965/raven/tensor"
)

func newClassificationData(n int) (tensor.D2, tensor.D1) {
	r := omwrand.NewMt19937()
	X := make(tensor.D2, 0, n)
	y := make(tensor.D1, 0, n)
	for i := 0; i < n; i++ {
		label := float64(i % 2)
		// クラス0は x0 < 0、クラス1は x0 > 0
		x0 := omwrand.Float64Uniform(0.5, 2.0, r)
		if label == 0.0 {
			x0 = -x0
		}
		x1 := omwrand.Float64Uniform(-1.0, 1.0, r)
		X = append(X, tensor.D1{x0, x1})
		y = append(y, label)
	}
	return X, y
}

func TestDecisionTreeClassification(t *testing.T) {
	r := omwrand.NewMt19937()
	X, y := newClassificationData(64)

	tree := &forest.DecisionTree{Criterion: forest.Entropy, Classifier: true}
	if err := tree.Fit(X, y, r); err != nil {
		t.Fatal(err)
	}
	for i := range X {
		pred, err := tree.Predict(X[i])
		if err != nil {
			t.Fatal(err)
		}
		if pred != y[i] {
			t.Errorf("pred(%v) = %v, expected %v", X[i], pred, y[i])
		}
	}
}

func TestDecisionTreeGini(t *testing.T) {
	r := omwrand.NewMt19937()
	X, y := newClassificationData(64)

	tree := &forest.DecisionTree{MaxDepth: 3, Criterion: forest.Gini, Classifier: true}
	if err := tree.Fit(X, y, r); err != nil {
		t.Fatal(err)
	}
	correct := 0
	for i := range X {
		pred, err := tree.Predict(X[i])
		if err != nil {
			t.Fatal(err)
		}
		if pred == y[i] {
			correct += 1
		}
	}
	if correct != len(X) {
		t.Errorf("accuracy = %d/%d on separable data", correct, len(X))
	}
}

func TestDecisionTreeCriterionMismatch(t *testing.T) {
	r := omwrand.NewMt19937()
	X, y := newClassificationData(8)

	tree := &forest.DecisionTree{Criterion: forest.MSE, Classifier: true}
	if err := tree.Fit(X, y, r); err == nil {
		t.Errorf("MSE on a classification tree should be an error")
	}

	reg := &forest.DecisionTree{Criterion: forest.Entropy, Classifier: false}
	if err := reg.Fit(X, y, r); err == nil {
		t.Errorf("entropy on a regression tree should be an error")
	}
}

func TestRandomForestClassification(t *testing.T) {
	r := omwrand.NewMt19937()
	X, y := newClassificationData(128)

	f := &forest.RandomForest{
		NTrees:     10,
		MaxDepth:   4,
		Criterion:  forest.Entropy,
		Classifier: true,
	}
	if err := f.Fit(X, y, r); err != nil {
		t.Fatal(err)
	}
	if len(f.Trees) != 10 {
		t.Fatalf("len(Trees) = %d, expected 10", len(f.Trees))
	}

	preds, err := f.PredictAll(X)
	if err != nil {
		t.Fatal(err)
	}
	correct := 0
	for i := range preds {
		if preds[i] == y[i] {
			correct += 1
		}
	}
	// ブートストラップありでも分離可能なデータはほぼ全問正解できる
	if float64(correct)/float64(len(y)) < 0.95 {
		t.Errorf("accuracy = %d/%d", correct, len(y))
	}
}

func TestRandomForestRegression(t *testing.T) {
	r := omwrand.NewMt19937()
	n := 64
	X := make(tensor.D2, 0, n)
	y := make(tensor.D1, 0, n)
	for i := 0; i < n; i++ {
		// x0 < 0 のとき y=1、x0 > 0 のとき y=5
		if i%2 == 0 {
			X = append(X, tensor.D1{omwrand.Float64Uniform(-2.0, -0.5, r)})
			y = append(y, 1.0)
		} else {
			X = append(X, tensor.D1{omwrand.Float64Uniform(0.5, 2.0, r)})
			y = append(y, 5.0)
		}
	}

	f := &forest.RandomForest{
		NTrees:     10,
		MaxDepth:   3,
		Criterion:  forest.MSE,
		Classifier: false,
	}
	if err := f.Fit(X, y, r); err != nil {
		t.Fatal(err)
	}

	low, err := f.Predict(tensor.D1{-1.0})
	if err != nil {
		t.Fatal(err)
	}
	high, err := f.Predict(tensor.D1{1.0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(low-1.0) > 0.5 {
		t.Errorf("low = %v, expected ~1", low)
	}
	if math.Abs(high-5.0) > 0.5 {
		t.Errorf("high = %v, expected ~5", high)
	}
}

func TestRandomForestFeatureSampling(t *testing.T) {
	r := omwrand.NewMt19937()
	X, y := newClassificationData(64)

	f := &forest.RandomForest{
		NTrees:     5,
		MaxDepth:   4,
		NFeatures:  1,
		Criterion:  forest.Gini,
		Classifier: true,
	}
	if err := f.Fit(X, y, r); err != nil {
		t.Fatal(err)
	}
	pred, err := f.Predict(X[0])
	if err != nil {
		t.Fatal(err)
	}
	if pred != 0.0 && pred != 1.0 {
		t.Errorf("pred = %v, expected a training label", pred)
	}
}

func TestRandomForestNotFitted(t *testing.T) {
	f := &forest.RandomForest{NTrees: 3, Criterion: forest.Entropy, Classifier: true}
	if _, err := f.Predict(tensor.D1{0.0}); err == nil {
		t.Errorf("predicting before Fit should be an error")
	}
}
