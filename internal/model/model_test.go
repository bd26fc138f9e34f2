package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModelNotFound(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.NotErrorIs(t, err, ErrModelLoad)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestLoadModelCorrupt(t *testing.T) {
	_, err := LoadModel("testdata/corrupt.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelLoad)
	assert.NotErrorIs(t, err, ErrModelNotFound)
}

func TestLoadModelRejectsCyclicTree(t *testing.T) {
	_, err := LoadModel("testdata/cyclic.json")
	require.ErrorIs(t, err, ErrModelLoad)
	assert.Contains(t, err.Error(), "invalid children")
}

func TestLoadModelValidation(t *testing.T) {
	cases := map[string]string{
		"unsupported type": `{"model_type":"random_forest","feature_names":["a"],"trees":[{"nodes":[{"leaf":true}]}]}`,
		"no trees":         `{"model_type":"gradient_boosting","feature_names":["a"],"trees":[]}`,
		"no features":      `{"model_type":"gradient_boosting","trees":[{"nodes":[{"leaf":true}]}]}`,
		"empty tree":       `{"model_type":"gradient_boosting","feature_names":["a"],"trees":[{"nodes":[]}]}`,
		"feature range":    `{"model_type":"gradient_boosting","feature_names":["a"],"trees":[{"nodes":[{"feature":3,"left":1,"right":2},{"leaf":true},{"leaf":true}]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadModel(path)
			assert.ErrorIs(t, err, ErrModelLoad)
		})
	}
}

func TestLoadModelFeatureNames(t *testing.T) {
	_, err := LoadModel("testdata/stump.json", WithFeatureNames([]string{"a", "b"}))
	require.NoError(t, err)

	_, err = LoadModel("testdata/stump.json", WithFeatureNames([]string{"b", "a"}))
	require.ErrorIs(t, err, ErrModelLoad)
	assert.Contains(t, err.Error(), `model expects "a"`)

	_, err = LoadModel("testdata/stump.json", WithFeatureNames([]string{"a"}))
	assert.ErrorIs(t, err, ErrModelLoad)
}

func TestEnsemblePredict(t *testing.T) {
	ens, err := LoadModel("testdata/stump.json")
	require.NoError(t, err)
	assert.Equal(t, 2, ens.NumFeatures())

	proba, err := ens.PredictProba([]float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-2)), proba[1], 1e-12)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-12)

	class, err := ens.Predict([]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, class)

	class, err = ens.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, class)
}

func TestStumpIsNotSynthetic(t *testing.T) {
	ens, err := LoadModel("testdata/stump.json")
	require.NoError(t, err)
	assert.False(t, ens.Synthetic)
}

func TestEnsembleWrongLength(t *testing.T) {
	ens, err := LoadModel("testdata/stump.json")
	require.NoError(t, err)

	_, err = ens.PredictProba([]float64{1})
	assert.Error(t, err)
	_, err = ens.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestShippedModel(t *testing.T) {
	ens, err := LoadModel("../../models/heart_disease_model.json")
	require.NoError(t, err)
	assert.Equal(t, 15, ens.NumFeatures())
	assert.True(t, ens.Synthetic)
	assert.NotEmpty(t, ens.Description)

	// 60, Female, ASY, 140, 300, 1, LVH, 140, Yes, 2.5, Flat
	features := []float64{60, 0, 0, 140, 300, 1, 0, 140, 1, 2.5, 1, 140.0 / 141, 300.0 / 61, 11, 140.0 / 141}
	proba, err := ens.PredictProba(features)
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1.7)), proba[1], 1e-9)

	class, err := ens.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, 1, class)
}

func TestSigmoidStable(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
	assert.InDelta(t, 1.0, sigmoid(1000), 1e-12)
	assert.InDelta(t, 0.0, sigmoid(-1000), 1e-12)
	assert.False(t, math.IsNaN(sigmoid(-1000)))
}
