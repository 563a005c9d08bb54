package kwapi

import (
	"bytes"
	"encoding/json"
	"time"
)

// KeywordData is one entry of a keyword data response. Every field other
// than Keyword may be absent; Vol is nil when the API has no volume.
type KeywordData struct {
	Keyword     string       `json:"keyword"`
	Vol         *int64       `json:"vol"`
	CPC         *CPC         `json:"cpc,omitempty"`
	Competition *float64     `json:"competition"`
	Trend       []TrendPoint `json:"trend,omitempty"`
}

// CPC is the cost per click of a keyword.
type CPC struct {
	Currency string `json:"currency"`
	Value    Amount `json:"value"`
}

// TrendPoint is the volume of a keyword in one month.
type TrendPoint struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Value int64  `json:"value"`
}

// Amount is a decimal amount sent either as a JSON string or a JSON number.
type Amount string

// UnmarshalJSON accepts "1.25", 1.25 and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

// BatchResult is the decoded response to one batch request.
type BatchResult struct {
	// Keywords holds the data entries in response order.
	Keywords []KeywordData

	// Credits is the remaining account credit balance, when reported.
	Credits *int64

	// Time is the server-side processing time in seconds, when reported.
	Time *float64

	// Raw is the undecoded response body.
	Raw []byte

	// RequestID is the X-Request-Id sent with the request.
	RequestID string

	// Duration is the round-trip time of the request.
	Duration time.Duration
}

// Volumes returns the keyword to volume mapping of the result. A keyword
// listed more than once keeps its last entry.
func (r *BatchResult) Volumes() map[string]*int64 {
	volumes := make(map[string]*int64, len(r.Keywords))
	for _, kw := range r.Keywords {
		volumes[kw.Keyword] = kw.Vol
	}
	return volumes
}

// wireKeywordData shadows Keyword so that an absent or null keyword can be
// told apart from an empty one.
type wireKeywordData struct {
	KeywordData
	Keyword *string `json:"keyword"`
}

type wireResponse struct {
	Data    *[]wireKeywordData `json:"data"`
	Credits *int64             `json:"credits"`
	Time    *float64           `json:"time"`
}
