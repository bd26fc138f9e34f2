package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Skufu/HeartCheck/internal/heart"
	"github.com/Skufu/HeartCheck/internal/model"
)

var errPredictionFailed = errors.New("prediction returned an error")

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var modelPath string

	root := &cobra.Command{
		Use:          "heartctl",
		Short:        "Heart disease risk predictions from the command line",
		SilenceUsage: true,
	}
	defaultModel := os.Getenv("MODEL_PATH")
	if defaultModel == "" {
		defaultModel = filepath.Join("models", "heart_disease_model.json")
	}
	root.PersistentFlags().StringVar(&modelPath, "model", defaultModel, "path to the serialized model")

	root.AddCommand(newPredictCmd(&modelPath), newExamplesCmd(&modelPath), newFeaturesCmd())
	return root
}

func loadService(path string) (*heart.Service, error) {
	ens, err := model.LoadModel(path, model.WithFeatureNames(heart.FeatureNames()))
	if err != nil {
		return nil, err
	}
	return heart.NewService(ens), nil
}

// inputFlags registers one flag per form field, defaulting to the form's
// initial values.
func inputFlags(cmd *cobra.Command) *heart.RawInput {
	in := &heart.RawInput{}
	fields := []struct {
		dst   *heart.Value
		name  string
		value string
		usage string
	}{
		{&in.Age, "age", "50", "age in years"},
		{&in.Sex, "sex", "Male", "Female or Male"},
		{&in.ChestPainType, "chest-pain", "ATA", "ASY, ATA, NAP or TA"},
		{&in.RestingBP, "resting-bp", "120", "resting blood pressure (mm Hg)"},
		{&in.Cholesterol, "cholesterol", "200", "serum cholesterol (mg/dl)"},
		{&in.FastingBS, "fasting-bs", "0", "fasting blood sugar > 120 mg/dl (1=yes)"},
		{&in.RestingECG, "resting-ecg", "Normal", "LVH, Normal or ST"},
		{&in.MaxHR, "max-hr", "150", "maximum heart rate (bpm)"},
		{&in.ExerciseAngina, "exercise-angina", "No", "No or Yes"},
		{&in.Oldpeak, "oldpeak", "1.0", "ST depression (mm)"},
		{&in.STSlope, "st-slope", "Up", "Down, Flat or Up"},
	}
	for _, f := range fields {
		cmd.Flags().Var(newValueFlag(f.dst, f.value), f.name, f.usage)
	}
	return in
}

type valueFlag struct {
	dst *heart.Value
}

func newValueFlag(dst *heart.Value, def string) *valueFlag {
	*dst = heart.Value(def)
	return &valueFlag{dst: dst}
}

func (v *valueFlag) String() string {
	if v.dst == nil {
		return ""
	}
	return string(*v.dst)
}

func (v *valueFlag) Set(s string) error {
	*v.dst = heart.Value(s)
	return nil
}

func (v *valueFlag) Type() string {
	return "string"
}

func newPredictCmd(modelPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict heart disease for one patient",
	}
	in := inputFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		svc, err := loadService(*modelPath)
		if err != nil {
			return err
		}
		out := heart.Respond(svc.Predict(cmd.Context(), *in))
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		if _, failed := out[heart.KeyError]; failed {
			return errPredictionFailed
		}
		return nil
	}
	return cmd
}

func newExamplesCmd(modelPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Run the built-in quick test examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(*modelPath)
			if err != nil {
				return err
			}
			type row struct {
				Name   string            `json:"name"`
				Result map[string]string `json:"result"`
			}
			var rows []row
			for _, ex := range heart.Examples() {
				rows = append(rows, row{Name: ex.Name, Result: heart.Respond(svc.Predict(cmd.Context(), ex.Input))})
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}
}

func newFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print the model input computed from the form fields",
	}
	in := inputFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		features, err := heart.Transform(*in)
		if err != nil {
			return fmt.Errorf("transform: %w", err)
		}
		values := features.Values()
		ordered := make([]map[string]any, 0, heart.NumFeatures)
		for i, name := range heart.FeatureNames() {
			ordered = append(ordered, map[string]any{"name": name, "value": values[i]})
		}
		return writeJSON(cmd.OutOrStdout(), ordered)
	}
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
