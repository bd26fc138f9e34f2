package heart

// Example is a ready-made form submission shown next to the form.
type Example struct {
	Name  string   `json:"name"`
	Input RawInput `json:"input"`
}

func Examples() []Example {
	return []Example{
		{
			Name: "45M atypical angina, upsloping ST",
			Input: RawInput{
				Age: "45", Sex: "Male", ChestPainType: "ATA", RestingBP: "130", Cholesterol: "250",
				FastingBS: "0", RestingECG: "Normal", MaxHR: "165", ExerciseAngina: "No", Oldpeak: "1.0", STSlope: "Up",
			},
		},
		{
			Name: "60F asymptomatic, exercise angina, flat ST",
			Input: RawInput{
				Age: "60", Sex: "Female", ChestPainType: "ASY", RestingBP: "140", Cholesterol: "300",
				FastingBS: "1", RestingECG: "LVH", MaxHR: "140", ExerciseAngina: "Yes", Oldpeak: "2.5", STSlope: "Flat",
			},
		},
		{
			Name: "35M non-anginal pain, high max HR",
			Input: RawInput{
				Age: "35", Sex: "Male", ChestPainType: "NAP", RestingBP: "120", Cholesterol: "180",
				FastingBS: "0", RestingECG: "Normal", MaxHR: "180", ExerciseAngina: "No", Oldpeak: "0.0", STSlope: "Up",
			},
		},
	}
}
