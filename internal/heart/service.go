package heart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	LabelDisease   = "Heart Disease Detected"
	LabelNoDisease = "No Heart Disease"

	KeyPrediction    = "Prediction"
	KeyConfidence    = "Confidence"
	KeyProbDisease   = "Probability of Disease"
	KeyProbNoDisease = "Probability of No Disease"
	KeyError         = "Error"
)

const probabilityTolerance = 1e-6

// Classifier is the read-only capability the service needs from a trained
// model. Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([2]float64, error)
}

type Prediction struct {
	Class         int     `json:"class"`
	Label         string  `json:"label"`
	Confidence    float64 `json:"confidence"`
	ProbDisease   float64 `json:"prob_disease"`
	ProbNoDisease float64 `json:"prob_no_disease"`
}

// Service turns raw form input into a prediction. It holds no mutable state.
type Service struct {
	model Classifier
}

func NewService(model Classifier) *Service {
	return &Service{model: model}
}

// Predict runs the full pipeline. Errors are always *InvalidValueError or
// *FailureError; a panicking model is reported as a FailureError.
func (s *Service) Predict(ctx context.Context, in RawInput) (p *Prediction, err error) {
	_, span := otel.Tracer("heart").Start(ctx, "heart.Predict")
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &FailureError{Op: OpInfer, Err: fmt.Errorf("model panicked: %v", r)}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("heart.class", p.Class),
				attribute.Float64("heart.confidence", p.Confidence),
			)
		}
		span.End()
	}()

	if s.model == nil {
		return nil, &FailureError{Op: OpInfer, Err: errors.New("model is not loaded")}
	}

	features, err := Transform(in)
	if err != nil {
		return nil, err
	}
	return s.infer(features)
}

func (s *Service) infer(features FeatureVector) (*Prediction, error) {
	row := features.Values()

	class, err := s.model.Predict(row)
	if err != nil {
		return nil, &FailureError{Op: OpInfer, Err: err}
	}
	if class != 0 && class != 1 {
		return nil, &FailureError{Op: OpInfer, Err: fmt.Errorf("model returned unknown class %d", class)}
	}
	proba, err := s.model.PredictProba(row)
	if err != nil {
		return nil, &FailureError{Op: OpInfer, Err: err}
	}
	if err := checkProba(proba); err != nil {
		return nil, &FailureError{Op: OpInfer, Err: err}
	}

	label := LabelNoDisease
	if class == 1 {
		label = LabelDisease
	}
	return &Prediction{
		Class:         class,
		Label:         label,
		Confidence:    proba[class],
		ProbDisease:   proba[1],
		ProbNoDisease: proba[0],
	}, nil
}

func checkProba(proba [2]float64) error {
	for _, p := range proba {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("model returned invalid probabilities %v", proba)
		}
	}
	if math.Abs(proba[0]+proba[1]-1) > probabilityTolerance {
		return fmt.Errorf("model probabilities do not sum to 1: %v", proba)
	}
	return nil
}

// Respond renders the outcome of Predict as the mapping shown to the user.
// Callers tell the two shapes apart by the presence of KeyError.
func Respond(p *Prediction, err error) map[string]string {
	if err != nil {
		var invalid *InvalidValueError
		if errors.As(err, &invalid) {
			return map[string]string{
				KeyError: fmt.Sprintf("Invalid input value (check categories): %s '%s'", invalid.Field, invalid.Value),
			}
		}
		return map[string]string{KeyError: "Prediction failed: " + err.Error()}
	}
	if p == nil {
		return map[string]string{KeyError: "Prediction failed: empty result"}
	}
	return map[string]string{
		KeyPrediction:    p.Label,
		KeyConfidence:    Percent(p.Confidence),
		KeyProbDisease:   Percent(p.ProbDisease),
		KeyProbNoDisease: Percent(p.ProbNoDisease),
	}
}

// Percent formats a probability with two decimals, e.g. 0.8712 -> "87.12%".
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}
