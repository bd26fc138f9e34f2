package heart

import (
	"errors"
	"fmt"
	"math"
)

const (
	FieldAge            = "Age"
	FieldSex            = "Sex"
	FieldChestPainType  = "ChestPainType"
	FieldRestingBP      = "RestingBP"
	FieldCholesterol    = "Cholesterol"
	FieldFastingBS      = "FastingBS"
	FieldRestingECG     = "RestingECG"
	FieldMaxHR          = "MaxHR"
	FieldExerciseAngina = "ExerciseAngina"
	FieldOldpeak        = "Oldpeak"
	FieldSTSlope        = "ST_Slope"

	FeatureBPHRRatio     = "BP_HR_Ratio"
	FeatureCholAgeRatio  = "Chol_Age_Ratio"
	FeatureRiskScore     = "Risk_Score"
	FeatureCardiacStress = "Cardiac_Stress"
)

// NumFeatures is the width of the model input.
const NumFeatures = 15

// featureNames is the training-time column order. The model cannot detect a
// reordering, so this order is the contract with the artifact.
var featureNames = [NumFeatures]string{
	FieldAge, FieldSex, FieldChestPainType, FieldRestingBP, FieldCholesterol,
	FieldFastingBS, FieldRestingECG, FieldMaxHR, FieldExerciseAngina, FieldOldpeak,
	FieldSTSlope, FeatureBPHRRatio, FeatureCholAgeRatio, FeatureRiskScore, FeatureCardiacStress,
}

func FeatureNames() []string {
	out := make([]string, NumFeatures)
	copy(out, featureNames[:])
	return out
}

type FeatureVector struct {
	Age            float64
	Sex            float64
	ChestPainType  float64
	RestingBP      float64
	Cholesterol    float64
	FastingBS      float64
	RestingECG     float64
	MaxHR          float64
	ExerciseAngina float64
	Oldpeak        float64
	STSlope        float64
	BPHRRatio      float64
	CholAgeRatio   float64
	RiskScore      float64
	CardiacStress  float64
}

// Values returns the vector as a single model row in training column order.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.Age, f.Sex, f.ChestPainType, f.RestingBP, f.Cholesterol,
		f.FastingBS, f.RestingECG, f.MaxHR, f.ExerciseAngina, f.Oldpeak,
		f.STSlope, f.BPHRRatio, f.CholAgeRatio, f.RiskScore, f.CardiacStress,
	}
}

// Named pairs each value with its column name.
func (f FeatureVector) Named() map[string]float64 {
	values := f.Values()
	out := make(map[string]float64, NumFeatures)
	for i, name := range featureNames {
		out[name] = values[i]
	}
	return out
}

var errDivisionByZero = errors.New("float division by zero")

// Transform coerces, encodes and derives the model input from raw form fields.
func Transform(in RawInput) (FeatureVector, error) {
	var (
		f   FeatureVector
		err error
	)

	reals := []struct {
		field string
		raw   Value
		dst   *float64
	}{
		{FieldAge, in.Age, &f.Age},
		{FieldRestingBP, in.RestingBP, &f.RestingBP},
		{FieldCholesterol, in.Cholesterol, &f.Cholesterol},
		{FieldMaxHR, in.MaxHR, &f.MaxHR},
		{FieldOldpeak, in.Oldpeak, &f.Oldpeak},
	}
	for _, r := range reals {
		if *r.dst, err = parseReal(r.field, r.raw); err != nil {
			return FeatureVector{}, err
		}
	}

	fastingBS, err := parseInt(FieldFastingBS, in.FastingBS)
	if err != nil {
		return FeatureVector{}, err
	}
	if !fastingBSCodes[fastingBS] {
		return FeatureVector{}, &InvalidValueError{Field: FieldFastingBS, Value: fmt.Sprint(fastingBS)}
	}
	f.FastingBS = float64(fastingBS)

	categoricals := []struct {
		field string
		raw   Value
		dst   *float64
	}{
		{FieldSex, in.Sex, &f.Sex},
		{FieldChestPainType, in.ChestPainType, &f.ChestPainType},
		{FieldRestingECG, in.RestingECG, &f.RestingECG},
		{FieldExerciseAngina, in.ExerciseAngina, &f.ExerciseAngina},
		{FieldSTSlope, in.STSlope, &f.STSlope},
	}
	for _, c := range categoricals {
		code, err := Encode(c.field, string(c.raw))
		if err != nil {
			return FeatureVector{}, err
		}
		*c.dst = float64(code)
	}

	if err := derive(&f); err != nil {
		return FeatureVector{}, err
	}
	for i, v := range f.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FeatureVector{}, &FailureError{Op: OpDerive, Field: featureNames[i], Err: fmt.Errorf("input contains NaN or infinity in %s", featureNames[i])}
		}
	}
	return f, nil
}

// derive fills the engineered ratios. The +1 terms are part of the trained
// feature definitions.
func derive(f *FeatureVector) error {
	var err error
	if f.BPHRRatio, err = divide(FeatureBPHRRatio, f.RestingBP, f.MaxHR+1); err != nil {
		return err
	}
	if f.CholAgeRatio, err = divide(FeatureCholAgeRatio, f.Cholesterol, f.Age+1); err != nil {
		return err
	}
	f.RiskScore = f.Oldpeak*2 + f.Age/10
	if f.CardiacStress, err = divide(FeatureCardiacStress, f.MaxHR, f.RestingBP+1); err != nil {
		return err
	}
	return nil
}

func divide(feature string, num, den float64) (float64, error) {
	if den == 0 {
		return 0, &FailureError{Op: OpDerive, Field: feature, Err: errDivisionByZero}
	}
	return num / den, nil
}
