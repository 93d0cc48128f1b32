package credit

import "creditbot/internal/model/conversation"

// Report is the payload submitted to the credit-risk API. SSN stays a
// pointer so a declined consent serializes as an explicit null rather than
// being dropped.
type Report struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	ZipCode     string  `json:"zipCode"`
	DateOfBirth string  `json:"dateOfBirth"`
	SSN         *string `json:"ssn"`
}

// Result is the subset of the credit-risk response surfaced to the user.
type Result struct {
	CreditScore int    `json:"creditScore"`
	RiskLevel   string `json:"riskLevel"`
	Summary     string `json:"summary"`
}

// ReportFromData maps a collected field mapping onto the wire shape.
func ReportFromData(data map[string]*string) Report {
	return Report{
		FirstName:   deref(data[conversation.FieldFirstName]),
		LastName:    deref(data[conversation.FieldLastName]),
		Address:     deref(data[conversation.FieldAddress]),
		City:        deref(data[conversation.FieldCity]),
		State:       deref(data[conversation.FieldState]),
		ZipCode:     deref(data[conversation.FieldZipCode]),
		DateOfBirth: deref(data[conversation.FieldDob]),
		SSN:         data[conversation.FieldSSN],
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
