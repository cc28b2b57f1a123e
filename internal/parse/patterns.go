package parse

// Config holds the pattern tables the parser is built from. The generic
// notification variant and the UPI SMS variant share one parser; anything
// channel-specific belongs in these tables, not in code.
type Config struct {
	KnownApps            map[string]string
	GateKeywords         []string
	AmountPatterns       []string
	ReferencePatterns    []string
	CounterpartyPatterns []string
}

// DefaultConfig returns the pattern tables covering generic payment-app
// notifications and Indian bank/UPI SMS phrasing.
func DefaultConfig() Config {
	return Config{
		// A message with none of these is discarded before any regex work.
		GateKeywords: []string{
			"received",
			"credited",
			"payment received",
			"money received",
			"upi credit",
			"transaction successful",
			"payment successful",
			"amount credited",
			"payment completed",
			"transfer received",
		},

		// Ordered; the first pattern that matches wins. Exactly one capture
		// group holding the amount, thousands separators allowed.
		AmountPatterns: []string{
			// "received Rs. 250.00", "credited with INR 1,500"
			`(?:received|credited(?:\s+(?:with|by))?|got)\s+(?:\brs\.?|\binr|₹)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`,
			// "Rs. 250.00 received", "INR 500 has been credited"
			`(?:\brs\.?|\binr|₹)\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s+(?:is\s+|has\s+been\s+|was\s+)?(?:received|credited|sent\s+to\s+you)`,
			// "payment of Rs 300", "UPI transfer of INR 120.50"
			`(?:payment|transfer|amount|upi(?:\s+(?:payment|transfer))?)\s+of\s+(?:\brs\.?|\binr|₹)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`,
			// bank SMS: "A/c XX1234 credited INR 250.00"
			`a/?c(?:count)?\s+\S+\s+(?:is\s+)?credited\s+(?:with\s+|by\s+)?(?:\brs\.?|\binr|₹)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`,
			// last resort: any currency-prefixed number in a gated message
			`(?:\brs\.?|\binr|₹)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`,
		},

		// Label-prefixed alphanumeric token. Captures are discarded in code
		// unless they contain at least one digit.
		ReferencePatterns: []string{
			`(?:txn|transaction|ref(?:erence)?|utr)\s*(?:id|no|number)[:\s#.-]*([a-z0-9]{6,22})`,
			`(?:txn|ref)[:#]\s*([a-z0-9]{6,22})`,
			`\butr[:\s#.-]*([0-9]{10,16})`,
		},

		// Up to four words; trailing stopwords are trimmed in code.
		CounterpartyPatterns: []string{
			`(?:from|by|payer)[:\s]+([a-z][a-z0-9.@_-]*(?:\s+[a-z0-9.@_-]+){0,3})`,
			`([a-z][a-z0-9@_-]*(?:\s+[a-z0-9@_-]+){0,3})\s+(?:has\s+sent|sent\s+you)`,
		},

		// Lowercase needle (matched on word boundaries) to canonical name.
		KnownApps: map[string]string{
			"google pay": "Google Pay",
			"gpay":       "Google Pay",
			"phonepe":    "PhonePe",
			"paytm":      "Paytm",
			"bhim":       "BHIM",
			"amazon pay": "Amazon Pay",
			"whatsapp":   "WhatsApp Pay",
			"cred":       "CRED",
			"mobikwik":   "MobiKwik",
			"freecharge": "Freecharge",
		},
	}
}

// counterpartyStopwords end a captured counterparty label; anything from
// the first stopword on is message plumbing, not a name.
var counterpartyStopwords = map[string]bool{
	"via":     true,
	"on":      true,
	"to":      true,
	"for":     true,
	"upi":     true,
	"a/c":     true,
	"account": true,
	"has":     true,
	"is":      true,
	"your":    true,
	"rs":      true,
	"rs.":     true,
	"inr":     true,
}
