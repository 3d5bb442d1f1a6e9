package models

// SearchParams represents a topic search request.
type SearchParams struct {
	Topic     string   `json:"topic"`
	K         int      `json:"k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"` // minimum similarity; unset means no filtering
}

// Normalize applies defaultK when K is unset or invalid and caps K at maxK.
// A maxK of zero or less means no cap.
func (p *SearchParams) Normalize(defaultK, maxK int) {
	if p.K <= 0 {
		p.K = defaultK
	}
	if maxK > 0 && p.K > maxK {
		p.K = maxK
	}
}
