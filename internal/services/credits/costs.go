package credits

// Action names every billable operation in the product.
type Action string

const (
	ActionAIScoring            Action = "ai_scoring"
	ActionEmailSend            Action = "email_send"
	ActionSMSSend              Action = "sms_send"
	ActionLeadSearch           Action = "lead_search"
	ActionEmailPersonalization Action = "email_personalization"
)

// Cost per action. Zero-cost actions never touch the ledger.
var costs = map[Action]int{
	ActionAIScoring:            1,
	ActionEmailSend:            0,
	ActionSMSSend:              2,
	ActionLeadSearch:           0,
	ActionEmailPersonalization: 1,
}

// Cost returns the credit price of an action. Unknown actions cost zero.
func Cost(a Action) int {
	return costs[a]
}
