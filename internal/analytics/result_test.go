package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdownEntryMarshalsWithDimensionKey(t *testing.T) {
	entry := BreakdownEntry{Key: "osName", Label: "macOS", Count: 42}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "macOS", decoded["osName"])
	assert.Equal(t, float64(42), decoded["count"])
	assert.Len(t, decoded, 2)
}

func TestBreakdownEntriesCarryDifferentKeys(t *testing.T) {
	entries := []BreakdownEntry{
		{Key: "pathname", Label: "/pricing", Count: 10},
		{Key: "country", Label: "Germany", Count: 3},
	}

	data, err := json.Marshal(entries)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "/pricing", decoded[0]["pathname"])
	assert.Equal(t, "Germany", decoded[1]["country"])
}

func TestResultOmitsEventNameWhenAbsent(t *testing.T) {
	data, err := json.Marshal(&Result{Filter: "today"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	_, present := decoded["eventName"]
	assert.False(t, present)

	// Changes serialize as explicit nulls so clients can tell "no baseline"
	// apart from a missing field.
	change, present := decoded["totalVisitsChange"]
	assert.True(t, present)
	assert.Nil(t, change)
}
