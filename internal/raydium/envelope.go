package raydium

import (
	"encoding/json"

	"solana-swap-router/internal/venue"
)

// The pool-directory API has shipped several response envelopes over time.
// Each shape is a predicate+extractor pair tried in order; adding a newly
// observed shape is a one-line change to this list.
type envelopeShape struct {
	name    string
	extract func(body []byte) ([]json.RawMessage, bool)
}

var envelopeShapes = []envelopeShape{
	{"bare-array", func(body []byte) ([]json.RawMessage, bool) {
		var records []json.RawMessage
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, false
		}
		return records, true
	}},
	{"data-array", func(body []byte) ([]json.RawMessage, bool) {
		var wrapped struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Data == nil {
			return nil, false
		}
		return wrapped.Data, true
	}},
	{"data-data-array", func(body []byte) ([]json.RawMessage, bool) {
		var wrapped struct {
			Data struct {
				Data []json.RawMessage `json:"data"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Data.Data == nil {
			return nil, false
		}
		return wrapped.Data.Data, true
	}},
}

// decodePoolRecords extracts directory records from whichever envelope the
// venue responded with. A body matching no known shape is malformed.
func decodePoolRecords(body []byte) ([]json.RawMessage, error) {
	for _, shape := range envelopeShapes {
		if records, ok := shape.extract(body); ok {
			return records, nil
		}
	}
	return nil, venue.NewError(venue.VenueDirectPool, venue.KindMalformed,
		"pool directory response matches no known envelope shape")
}
