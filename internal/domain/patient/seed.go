package patient

// SeedPatients returns the demo patients loaded by the seed command.
func SeedPatients() []*Patient {
	return []*Patient{
		{ID: "P001", Name: "John Doe", Age: 34, Gender: "Male", Phone: "0300-1234567"},
		{ID: "P002", Name: "Jane Smith", Age: 29, Gender: "Female", Phone: "0333-9876543"},
		{ID: "P003", Name: "Robert Brown", Age: 55, Gender: "Male", Phone: "0345-1122334"},
	}
}
