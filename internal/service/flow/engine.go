package flow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"creditbot/internal/model/conversation"
	"creditbot/internal/model/credit"
	"creditbot/internal/service/state"
)

// Callback payloads for the SSN consent choice.
const (
	ConsentYes = "consent_ssn_yes"
	ConsentNo  = "consent_ssn_no"
)

// Choice is one selectable inline option offered to the user.
type Choice struct {
	Label string
	Data  string
}

// Message is an inbound free-text message or command from the transport.
type Message struct {
	UserID int64
	ChatID int64
	Text   string
}

// ButtonPress is an inbound inline-button selection from the transport.
type ButtonPress struct {
	UserID     int64
	ChatID     int64
	MessageID  int
	CallbackID string
	Data       string
}

// Responder is the outbound half of the transport boundary.
type Responder interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendChoices(ctx context.Context, chatID int64, text string, choices [2]Choice) error
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// Scorer submits a completed report to the credit-risk API. Failures of any
// kind surface as an error whose message is shown to the user.
type Scorer interface {
	Check(ctx context.Context, report credit.Report) (credit.Result, error)
}

const (
	msgGreeting = "Hello! I can help you check credit risk data via Experian. " +
		"**Please be aware:** This process involves collecting sensitive personal information " +
		"which will be sent to Experian for analysis. By proceeding, you consent to this. " +
		"\n\nTo begin, type /check_credit."
	msgAskFirstName = "Okay, let's start the credit check. What is your **first name**?"
	msgAskSSNConsent = "To get the most accurate credit risk data, we typically need your **Social Security Number (SSN)**. " +
		"**WARNING:** Providing your SSN is highly sensitive. It will be transmitted securely to Experian. " +
		"We do not store your SSN. " +
		"Do you consent to provide your SSN? (Yes/No)"
	msgAskSSN        = "Please enter your **Social Security Number (SSN)**. (e.g., XXX-XX-XXXX)."
	msgSSNDeclined   = "You chose not to provide your SSN. Proceeding without it."
	msgProcessing    = "Thank you for the information. I'm now processing your request with Experian. This may take a moment..."
	msgConsentNudge  = "Please use the buttons above to choose whether to provide your SSN."
	msgNotUnderstood = "I'm not sure what you mean. Please use /start or /check_credit to begin."
	msgStaleAction   = "This action is no longer valid or you are not in the correct step."
)

var consentChoices = [2]Choice{
	{Label: "Yes, provide SSN", Data: ConsentYes},
	{Label: "No, skip SSN", Data: ConsentNo},
}

// transition describes what a free-text answer does at a given step: which
// field it fills, where the dialogue goes next, and what is asked there.
type transition struct {
	field   string
	next    conversation.Step
	prompt  string
	consent bool // the next prompt carries the consent choice buttons
	submit  bool // completing this step submits the report instead of advancing
}

var transitions = map[conversation.Step]transition{
	conversation.StepAskFirstName: {
		field:  conversation.FieldFirstName,
		next:   conversation.StepAskLastName,
		prompt: "Thanks! What is your **last name**?",
	},
	conversation.StepAskLastName: {
		field:  conversation.FieldLastName,
		next:   conversation.StepAskAddress,
		prompt: "Please provide your **street address** (e.g., 123 Main St).",
	},
	conversation.StepAskAddress: {
		field:  conversation.FieldAddress,
		next:   conversation.StepAskCity,
		prompt: "What is your **city**?",
	},
	conversation.StepAskCity: {
		field:  conversation.FieldCity,
		next:   conversation.StepAskState,
		prompt: "What is your **state/province** (e.g., CA, NY)?",
	},
	conversation.StepAskState: {
		field:  conversation.FieldState,
		next:   conversation.StepAskZipCode,
		prompt: "What is your **zip/postal code**?",
	},
	conversation.StepAskZipCode: {
		field:  conversation.FieldZipCode,
		next:   conversation.StepAskDob,
		prompt: "What is your **date of birth** (YYYY-MM-DD)?",
	},
	conversation.StepAskDob: {
		field:   conversation.FieldDob,
		next:    conversation.StepAskSSNConsent,
		consent: true,
	},
	conversation.StepAskSSN: {
		field:  conversation.FieldSSN,
		submit: true,
	},
}

// Engine drives the scripted credit-check dialogue. It never retains state
// between calls; every decision re-fetches from the store.
type Engine struct {
	states    *state.Store
	scorer    Scorer
	responder Responder
}

// NewEngine wires the engine to its state store and collaborators.
func NewEngine(states *state.Store, scorer Scorer, responder Responder) *Engine {
	return &Engine{states: states, scorer: scorer, responder: responder}
}

// Start handles the /start command: any in-progress conversation is
// discarded and the greeting is sent.
func (e *Engine) Start(ctx context.Context, msg Message) error {
	e.states.Clear(msg.UserID)
	log.Printf("[flow] user %d started the bot", msg.UserID)
	return e.responder.SendText(ctx, msg.ChatID, msgGreeting)
}

// BeginCheck handles the /check_credit command: prior data is discarded and
// the elicitation sequence starts from the first name.
func (e *Engine) BeginCheck(ctx context.Context, msg Message) error {
	e.states.Clear(msg.UserID)
	e.states.SetStep(msg.UserID, conversation.StepAskFirstName, nil)
	log.Printf("[flow] user %d initiated credit check", msg.UserID)
	return e.responder.SendText(ctx, msg.ChatID, msgAskFirstName)
}

// HandleText processes a free-text message against the transition table.
// Text starting with "/" passes through untouched so commands never get
// recorded as answers. Out-of-flow text resets the user with a hint.
func (e *Engine) HandleText(ctx context.Context, msg Message) error {
	if strings.HasPrefix(msg.Text, "/") {
		return nil
	}

	st := e.states.Get(msg.UserID)
	if st.Step == conversation.StepAskSSNConsent {
		// The consent decision is buttons-only; free text here is rejected
		// without touching the in-progress conversation.
		return e.responder.SendText(ctx, msg.ChatID, msgConsentNudge)
	}

	tr, ok := transitions[st.Step]
	if !ok {
		log.Printf("[flow] user %d sent unexpected input in step %s", msg.UserID, st.Step)
		e.states.Clear(msg.UserID)
		return e.responder.SendText(ctx, msg.ChatID, msgNotUnderstood)
	}

	answer := msg.Text
	if tr.submit {
		e.states.SetField(msg.UserID, tr.field, &answer)
		return e.submit(ctx, msg.ChatID, msg.UserID)
	}

	e.states.SetStep(msg.UserID, tr.next, map[string]*string{tr.field: &answer})
	if tr.consent {
		return e.responder.SendChoices(ctx, msg.ChatID, msgAskSSNConsent, consentChoices)
	}
	return e.responder.SendText(ctx, msg.ChatID, tr.prompt)
}

// HandleButton processes the consent choice. A click arriving while the
// user is no longer at the consent step gets an alert-style notice and
// leaves state untouched.
func (e *Engine) HandleButton(ctx context.Context, press ButtonPress) error {
	st := e.states.Get(press.UserID)
	if st.Step != conversation.StepAskSSNConsent {
		log.Printf("[flow] user %d clicked invalid button in step %s", press.UserID, st.Step)
		return e.responder.AnswerCallback(ctx, press.CallbackID, msgStaleAction, true)
	}

	switch press.Data {
	case ConsentYes:
		e.states.SetStep(press.UserID, conversation.StepAskSSN, nil)
		log.Printf("[flow] user %d consented to provide SSN", press.UserID)
		if err := e.responder.EditText(ctx, press.ChatID, press.MessageID, msgAskSSN); err != nil {
			return err
		}
		return e.responder.AnswerCallback(ctx, press.CallbackID, "", false)
	case ConsentNo:
		e.states.SetField(press.UserID, conversation.FieldSSN, nil)
		log.Printf("[flow] user %d skipped providing SSN", press.UserID)
		if err := e.responder.EditText(ctx, press.ChatID, press.MessageID, msgSSNDeclined); err != nil {
			return err
		}
		if err := e.responder.AnswerCallback(ctx, press.CallbackID, "", false); err != nil {
			return err
		}
		return e.submit(ctx, press.ChatID, press.UserID)
	default:
		// Unknown payload at the right step: dismiss the spinner, change nothing.
		log.Printf("[flow] user %d sent unrecognized callback payload %q", press.UserID, press.Data)
		return e.responder.AnswerCallback(ctx, press.CallbackID, "", false)
	}
}

// submit fires the single scoring call for a completed conversation and
// renders its outcome. State is gone before the outcome message goes out,
// so the conversation cannot be resumed regardless of delivery.
func (e *Engine) submit(ctx context.Context, chatID, userID int64) error {
	if err := e.responder.SendText(ctx, chatID, msgProcessing); err != nil {
		log.Printf("[flow] failed to send processing notice to user %d: %v", userID, err)
	}

	report := credit.ReportFromData(e.states.Get(userID).Data)

	result, err := e.scorer.Check(ctx, report)

	var reply string
	if err != nil {
		log.Printf("[flow] credit check failed for user %d: %v", userID, err)
		reply = fmt.Sprintf(
			"I encountered an error while retrieving data from Experian: %s\n"+
				"Please try again later or contact support if the issue persists.", err)
	} else {
		log.Printf("[flow] credit check completed for user %d", userID)
		reply = fmt.Sprintf(
			"Here is the credit risk data from Experian:\n\n"+
				"**Credit Score:** %d\n"+
				"**Risk Level:** %s\n"+
				"**Summary:** %s\n\n"+
				"*(This data is for informational purposes only and not financial advice.)*",
			result.CreditScore, result.RiskLevel, result.Summary)
	}

	e.states.Clear(userID)
	return e.responder.SendText(ctx, chatID, reply)
}
