package gamma

import "encoding/json"

// Event is a container for one or more markets, e.g. one award
// category with one market per nominee.
type Event struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Active  bool     `json:"active"`
	Closed  bool     `json:"closed"`
	Markets []Market `json:"markets,omitempty"`
}

// Market is a single binary prediction market. The outcomes and their
// prices arrive as JSON-encoded string arrays inside the JSON payload.
type Market struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Slug     string `json:"slug"`
	Active   bool   `json:"active"`
	Closed   bool   `json:"closed"`

	OutcomesRaw      string `json:"outcomes"`
	OutcomePricesRaw string `json:"outcomePrices"`
}

// Outcomes returns the parsed outcome labels.
func (m *Market) Outcomes() []string {
	var outcomes []string
	if m.OutcomesRaw == "" {
		return outcomes
	}
	_ = json.Unmarshal([]byte(m.OutcomesRaw), &outcomes)
	return outcomes
}

// OutcomePrices returns the parsed outcome prices, as strings.
func (m *Market) OutcomePrices() []string {
	var prices []string
	if m.OutcomePricesRaw == "" {
		return prices
	}
	_ = json.Unmarshal([]byte(m.OutcomePricesRaw), &prices)
	return prices
}
