package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	ErrModelNotFound = errors.New("model file not found")
	ErrModelLoad     = errors.New("failed to load model")
)

const typeGradientBoosting = "gradient_boosting"

type Option func(*loadOptions)

type loadOptions struct {
	featureNames []string
}

// WithFeatureNames rejects artifacts trained on a different column schema.
func WithFeatureNames(names []string) Option {
	return func(o *loadOptions) {
		o.featureNames = names
	}
}

// LoadModel reads the serialized classifier at path. Callers load once at
// startup and share the returned ensemble; it is never mutated afterwards.
func LoadModel(path string, opts ...Option) (*Ensemble, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	var ens Ensemble
	if err := json.Unmarshal(payload, &ens); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrModelLoad, path, err)
	}
	if err := ens.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	if o.featureNames != nil {
		if err := ens.checkFeatureNames(o.featureNames); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
	}
	return &ens, nil
}

func (e *Ensemble) validate() error {
	if e.ModelType != typeGradientBoosting {
		return fmt.Errorf("unsupported model type %q", e.ModelType)
	}
	if len(e.FeatureNames) == 0 {
		return errors.New("feature_names is empty")
	}
	if len(e.Trees) == 0 {
		return errors.New("model has no trees")
	}
	for t, tree := range e.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", t)
		}
		for i, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= len(e.FeatureNames) {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", t, i, node.Feature)
			}
			// children always come after their parent, so traversal terminates
			if node.Left <= i || node.Left >= len(tree.Nodes) || node.Right <= i || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: invalid children %d/%d", t, i, node.Left, node.Right)
			}
		}
	}
	return nil
}

func (e *Ensemble) checkFeatureNames(want []string) error {
	if len(want) != len(e.FeatureNames) {
		return fmt.Errorf("model expects %d features, service provides %d", len(e.FeatureNames), len(want))
	}
	for i, name := range want {
		if e.FeatureNames[i] != name {
			return fmt.Errorf("feature %d: model expects %q, service provides %q", i, e.FeatureNames[i], name)
		}
	}
	return nil
}
