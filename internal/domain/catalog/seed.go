package catalog

// SeedSampleTypes is the built-in sample type catalog.
func SeedSampleTypes() []*SampleType {
	return []*SampleType{
		{ID: "edta", Name: "EDTA Whole Blood", TubeColor: "#9C27B0"},
		{ID: "serum", Name: "Serum", TubeColor: "#F44336"},
		{ID: "urine", Name: "Urine", TubeColor: "#FFC107"},
	}
}

// SeedTests is the built-in lab test catalog.
func SeedTests() []*LabTest {
	return []*LabTest{
		{
			ID: "cbc", Name: "Complete Blood Count (CBC)", Category: "Hematology",
			Price: 750, SampleTypeID: "edta",
			Parameters: []TestParameter{
				{ID: "hb", Name: "Hemoglobin", Unit: "g/dL", ReferenceRange: "13.5 - 17.5"},
				{ID: "wbc", Name: "WBC Count", Unit: "x10^9/L", ReferenceRange: "4.5 - 11.0"},
				{ID: "rbc", Name: "RBC Count", Unit: "x10^12/L", ReferenceRange: "4.5 - 5.9"},
				{ID: "plt", Name: "Platelets", Unit: "x10^9/L", ReferenceRange: "150 - 450"},
			},
		},
		{
			ID: "lipid", Name: "Lipid Profile", Category: "Biochemistry",
			Price: 1500, SampleTypeID: "serum",
			Parameters: []TestParameter{
				{ID: "chol", Name: "Total Cholesterol", Unit: "mg/dL", ReferenceRange: "< 200"},
				{ID: "tg", Name: "Triglycerides", Unit: "mg/dL", ReferenceRange: "< 150"},
				{ID: "hdl", Name: "HDL Cholesterol", Unit: "mg/dL", ReferenceRange: "> 40"},
				{ID: "ldl", Name: "LDL Cholesterol", Unit: "mg/dL", ReferenceRange: "< 100"},
			},
		},
		{
			ID: "lft", Name: "Liver Function Test", Category: "Biochemistry",
			Price: 1200, SampleTypeID: "serum",
			Parameters: []TestParameter{
				{ID: "alt", Name: "ALT (SGPT)", Unit: "U/L", ReferenceRange: "7 - 56"},
				{ID: "ast", Name: "AST (SGOT)", Unit: "U/L", ReferenceRange: "10 - 40"},
				{ID: "alp", Name: "Alkaline Phosphatase", Unit: "U/L", ReferenceRange: "44 - 147"},
				{ID: "bili", Name: "Total Bilirubin", Unit: "mg/dL", ReferenceRange: "0.1 - 1.2"},
			},
		},
		{
			ID: "tsh", Name: "Thyroid Stimulating Hormone", Category: "Hormones",
			Price: 900, SampleTypeID: "serum",
			Parameters: []TestParameter{
				{ID: "tsh_val", Name: "TSH", Unit: "mIU/L", ReferenceRange: "0.4 - 4.0"},
			},
		},
		{
			ID: "hba1c", Name: "HbA1c Glycated Hemoglobin", Category: "Biochemistry",
			Price: 1100, SampleTypeID: "edta",
			Parameters: []TestParameter{
				{ID: "hba1c_val", Name: "HbA1c Level", Unit: "%", ReferenceRange: "< 5.7"},
			},
		},
		{
			ID: "urine_rm", Name: "Urine R/M", Category: "Clinical Pathology",
			Price: 400, SampleTypeID: "urine",
			Parameters: []TestParameter{
				{ID: "color", Name: "Color", Unit: "", ReferenceRange: "Pale Yellow"},
				{ID: "ph", Name: "pH", Unit: "", ReferenceRange: "4.5 - 8.0"},
				{ID: "protein", Name: "Protein", Unit: "", ReferenceRange: "Negative"},
			},
		},
		{
			ID: "electrolytes", Name: "Serum Electrolytes", Category: "Biochemistry",
			Price: 1000, SampleTypeID: "serum",
			Parameters: []TestParameter{
				{ID: "na", Name: "Sodium (Na+)", Unit: "mEq/L", ReferenceRange: "135 - 145"},
				{ID: "k", Name: "Potassium (K+)", Unit: "mEq/L", ReferenceRange: "3.5 - 5.1"},
				{ID: "cl", Name: "Chloride (Cl-)", Unit: "mEq/L", ReferenceRange: "96 - 106"},
			},
		},
		{
			ID: "vit_d", Name: "25-OH Vitamin D", Category: "Special Chemistry",
			Price: 3500, SampleTypeID: "serum",
			Parameters: []TestParameter{
				{ID: "vit_d_val", Name: "Vitamin D Total", Unit: "ng/mL", ReferenceRange: "30 - 100"},
			},
		},
		{
			ID: "vit_b12", Name: "Vitamin B12", Category: "Special Chemistry",
			Price: 2800, SampleTypeID: "serum",
			Parameters: []TestParameter{
				{ID: "b12_val", Name: "Vitamin B12", Unit: "pg/mL", ReferenceRange: "200 - 900"},
			},
		},
	}
}
