package checklist

func ptrF(f float64) *float64 { return &f }

func ptrI(i int) *int { return &i }

func textField(name, label string, v *FieldValidation) FieldSchema {
	return FieldSchema{ID: name, Name: name, Label: label, Type: FieldTypeText, Validation: v}
}

func oneSection(fields ...FieldSchema) *Template {
	return &Template{
		ID:      "tpl-1",
		Name:    "Vorhabenprüfung",
		Version: 1,
		Sections: []Section{
			{ID: "s1", Title: "Allgemein", Fields: fields},
		},
	}
}
