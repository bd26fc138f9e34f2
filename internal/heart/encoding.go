package heart

// Codes must match the label encoding used when the model was trained.
var (
	sexCodes            = map[string]int{"Female": 0, "Male": 1}
	chestPainCodes      = map[string]int{"ASY": 0, "ATA": 1, "NAP": 2, "TA": 3}
	restingECGCodes     = map[string]int{"LVH": 0, "Normal": 1, "ST": 2}
	exerciseAnginaCodes = map[string]int{"No": 0, "Yes": 1}
	stSlopeCodes        = map[string]int{"Down": 0, "Flat": 1, "Up": 2}
	fastingBSCodes      = map[int]bool{0: true, 1: true}
)

var encodingTables = map[string]map[string]int{
	FieldSex:            sexCodes,
	FieldChestPainType:  chestPainCodes,
	FieldRestingECG:     restingECGCodes,
	FieldExerciseAngina: exerciseAnginaCodes,
	FieldSTSlope:        stSlopeCodes,
}

// Encode maps a categorical label to its integer code. Labels are matched
// exactly; surrounding whitespace or a different case is an invalid value.
func Encode(field string, label string) (int, error) {
	table, ok := encodingTables[field]
	if !ok {
		return 0, &FailureError{Op: OpEncode, Field: field, Err: errUnknownField(field)}
	}
	code, ok := table[label]
	if !ok {
		return 0, &InvalidValueError{Field: field, Value: label}
	}
	return code, nil
}

// Categories lists the accepted labels of a categorical field in code order.
func Categories(field string) []string {
	table, ok := encodingTables[field]
	if !ok {
		return nil
	}
	out := make([]string, len(table))
	for label, code := range table {
		out[code] = label
	}
	return out
}
