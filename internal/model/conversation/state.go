package conversation

// Step identifies the current position in the credit-check dialogue.
type Step string

// Dialogue steps, in elicitation order.
const (
	StepInitial       Step = "initial"
	StepAskFirstName  Step = "ask_first_name"
	StepAskLastName   Step = "ask_last_name"
	StepAskAddress    Step = "ask_address"
	StepAskCity       Step = "ask_city"
	StepAskState      Step = "ask_state"
	StepAskZipCode    Step = "ask_zip_code"
	StepAskDob        Step = "ask_dob"
	StepAskSSNConsent Step = "ask_ssn_consent"
	StepAskSSN        Step = "ask_ssn"
)

// Field keys under which collected answers are stored.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldAddress   = "address"
	FieldCity      = "city"
	FieldState     = "state"
	FieldZipCode   = "zip_code"
	FieldDob       = "dob"
	FieldSSN       = "ssn"
)

// State captures one user's position in the dialogue and the answers
// collected so far. A key absent from Data has not been asked yet; a key
// present with a nil value was explicitly declined.
type State struct {
	Step Step
	Data map[string]*string
}

// Empty returns the canonical state of a user with no active conversation.
func Empty() State {
	return State{Step: StepInitial, Data: map[string]*string{}}
}
