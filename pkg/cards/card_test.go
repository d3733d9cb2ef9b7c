package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCardStringFormat(t *testing.T) {
	require.Equal(t, "AS", Card{Suit: Spades, Rank: Ace}.String())
	require.Equal(t, "TD", Card{Suit: Diamonds, Rank: Ten}.String())
	require.Equal(t, "2H", Card{Suit: Hearts, Rank: Two}.String())
}

func TestCardJSONRoundTrip(t *testing.T) {
	c := Card{Suit: Clubs, Rank: Queen}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, `{"suit":"C","rank":12}`, string(data))

	var got Card
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, c, got)
}

func TestCardUnmarshalRejectsInvalidSuit(t *testing.T) {
	var c Card
	err := json.Unmarshal([]byte(`{"suit":"X","rank":5}`), &c)
	require.Error(t, err)
}

func TestCardUnmarshalRejectsOutOfRangeRank(t *testing.T) {
	var c Card
	err := json.Unmarshal([]byte(`{"suit":"H","rank":1}`), &c)
	require.Error(t, err)

	err = json.Unmarshal([]byte(`{"suit":"H","rank":15}`), &c)
	require.Error(t, err)
}
