package domain

import "time"

type Advisor struct {
	Document string `json:"document"`
	Name     string `json:"name"`
}

// Column is a descriptive cell of an obligation row, kept in header order.
type Column struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Obligation is one consolidated-table row belonging to a debtor. ID is the
// unmasked identifier and must never be sent to clients as is.
type Obligation struct {
	ID       string   `json:"id"`
	Campaign string   `json:"campaign"`
	Columns  []Column `json:"columns,omitempty"`
}

// SessionState carries the workflow between steps. It is serialized between
// requests, so every field must survive a JSON round trip.
type SessionState struct {
	ID             string       `json:"id"`
	Advisor        Advisor      `json:"advisor"`
	DebtorDocument string       `json:"debtor_document,omitempty"`
	Obligations    []Obligation `json:"obligations,omitempty"`
	Selected       []int        `json:"selected,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// SelectedObligations returns the obligations chosen by key, in key order.
func (s SessionState) SelectedObligations() []Obligation {
	out := make([]Obligation, 0, len(s.Selected))
	for _, k := range s.Selected {
		if k >= 0 && k < len(s.Obligations) {
			out = append(out, s.Obligations[k])
		}
	}
	return out
}

// Campaigns returns the distinct campaigns of the debtor's obligations.
func (s SessionState) Campaigns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range s.Obligations {
		if o.Campaign == "" || seen[o.Campaign] {
			continue
		}
		seen[o.Campaign] = true
		out = append(out, o.Campaign)
	}
	return out
}
