package model

// GeneratedResponse is the synthesized answer for one turn
type GeneratedResponse struct {
	Content            string
	Confidence         float64
	Citations          []Citation
	SuggestedFollowUps []string
	RequiresFollowUp   bool
	ParseError         bool   // model reply was not valid JSON; raw text salvaged
	EscalationRef      string // reference ID shown to the user when escalated
}
