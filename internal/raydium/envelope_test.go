package raydium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-swap-router/internal/venue"
)

func TestDecodePoolRecords_Envelopes(t *testing.T) {
	record := `{"id":"pool-1"}`

	cases := []struct {
		name string
		body string
	}{
		{"bare array", `[` + record + `]`},
		{"data array", `{"data":[` + record + `]}`},
		{"nested data array", `{"data":{"data":[` + record + `]}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := decodePoolRecords([]byte(tc.body))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.JSONEq(t, record, string(records[0]))
		})
	}
}

func TestDecodePoolRecords_EmptyResults(t *testing.T) {
	for _, body := range []string{`[]`, `{"data":[]}`, `{"data":{"data":[]}}`} {
		records, err := decodePoolRecords([]byte(body))
		require.NoError(t, err, body)
		assert.Empty(t, records, body)
	}
}

func TestDecodePoolRecords_UnknownShape(t *testing.T) {
	for _, body := range []string{
		`{"pools":[{"id":"x"}]}`,
		`"just a string"`,
		`42`,
		`not json at all`,
		`{"data":"nope"}`,
	} {
		_, err := decodePoolRecords([]byte(body))
		require.Error(t, err, body)
		assert.Equal(t, venue.KindMalformed, venue.KindOf(err), body)
	}
}
