package domain

// PromptTerm is one line of negotiation state handed to the reply generator
type PromptTerm struct {
	Label        string
	ItemName     string
	TargetValue  string
	QuotedValue  string
	CurrentValue string
	AgreedValue  string
}

// PromptContext carries everything the reply generator needs to produce the
// buyer's next turn: negotiation identity, the term ledger, the recent
// conversation window, and the supplier message being answered.
type PromptContext struct {
	NegotiationName string
	BuyerName       string
	CompanyName     string
	Currency        string
	Terms           []PromptTerm
	RecentMessages  []Message
	SupplierMessage string
	// MessageCount is the total log length, used to gauge negotiation stage
	MessageCount int
}

// EarlyStage reports whether the negotiation is still in its opening phase,
// where the generated replies should hold close to the target values.
func (p *PromptContext) EarlyStage() bool {
	return p.MessageCount <= 6
}
