package heart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a raw form field as the caller sent it. JSON strings and JSON
// numbers both decode into it; coercion happens later in Transform.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("field must be a string or a number, got %s", data)
	}
	*v = Value(n.String())
	return nil
}

func (v Value) String() string {
	return string(v)
}

// RawInput holds the eleven form fields. Field names match the training-time
// column names.
type RawInput struct {
	Age            Value `json:"Age" form:"Age" binding:"required"`
	Sex            Value `json:"Sex" form:"Sex" binding:"required"`
	ChestPainType  Value `json:"ChestPainType" form:"ChestPainType" binding:"required"`
	RestingBP      Value `json:"RestingBP" form:"RestingBP" binding:"required"`
	Cholesterol    Value `json:"Cholesterol" form:"Cholesterol" binding:"required"`
	FastingBS      Value `json:"FastingBS" form:"FastingBS" binding:"required"`
	RestingECG     Value `json:"RestingECG" form:"RestingECG" binding:"required"`
	MaxHR          Value `json:"MaxHR" form:"MaxHR" binding:"required"`
	ExerciseAngina Value `json:"ExerciseAngina" form:"ExerciseAngina" binding:"required"`
	Oldpeak        Value `json:"Oldpeak" form:"Oldpeak" binding:"required"`
	STSlope        Value `json:"ST_Slope" form:"ST_Slope" binding:"required"`
}

func parseReal(field string, v Value) (float64, error) {
	s := strings.TrimSpace(string(v))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &FailureError{Op: OpCoerce, Field: field, Err: fmt.Errorf("could not convert %s to float: %q", field, s)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FailureError{Op: OpCoerce, Field: field, Err: fmt.Errorf("input contains NaN or infinity in %s", field)}
	}
	return f, nil
}

// parseInt accepts integral text such as "1" or "1.0".
func parseInt(field string, v Value) (int, error) {
	s := strings.TrimSpace(string(v))
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, &FailureError{Op: OpCoerce, Field: field, Err: fmt.Errorf("invalid literal for int in %s: %q", field, s)}
	}
	return int(f), nil
}
