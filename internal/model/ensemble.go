package model

import (
	"fmt"
	"math"
)

// Ensemble is a binary gradient boosted tree classifier trained with log loss.
// Synthetic marks an artifact whose trees were not fitted to patient data.
type Ensemble struct {
	ModelType    string   `json:"model_type"`
	Description  string   `json:"description,omitempty"`
	Synthetic    bool     `json:"synthetic,omitempty"`
	FeatureNames []string `json:"feature_names"`
	InitScore    float64  `json:"init_score"`
	LearningRate float64  `json:"learning_rate"`
	Trees        []Tree   `json:"trees"`
}

type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Predict returns the class with the higher probability; ties go to class 0.
func (e *Ensemble) Predict(features []float64) (int, error) {
	proba, err := e.PredictProba(features)
	if err != nil {
		return 0, err
	}
	if proba[1] > proba[0] {
		return 1, nil
	}
	return 0, nil
}

// PredictProba returns [P(class 0), P(class 1)].
func (e *Ensemble) PredictProba(features []float64) ([2]float64, error) {
	if len(features) != len(e.FeatureNames) {
		return [2]float64{}, fmt.Errorf("expected %d features, got %d", len(e.FeatureNames), len(features))
	}
	raw := e.InitScore
	for _, tree := range e.Trees {
		raw += e.LearningRate * tree.eval(features)
	}
	p := sigmoid(raw)
	return [2]float64{1 - p, p}, nil
}

func (e *Ensemble) NumFeatures() int {
	return len(e.FeatureNames)
}

func (t Tree) eval(features []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	z := math.Exp(x)
	return z / (1 + z)
}
