package gamesession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternLineBase64RoundTrip(t *testing.T) {
	line := PatternLine{125, 0, 62, 10}
	data, err := line.MarshalJSON()
	require.NoError(t, err)

	var decoded PatternLine
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, line, decoded)
}

func TestPatternToEventsSkipsSilentMotorsAndScalesWaveform(t *testing.T) {
	mapping := HapticMapping{
		Key: "Explosion",
		AudioFilePatterns: []AudioFilePattern{
			{
				Clip: PatternClip{
					Duration: 90,
					Patterns: map[string][]PatternLine{
						"Head": {
							{125, 0, 0, 0, 0, 0},
							{62, 0, 0, 0, 0, 0},
						},
					},
				},
			},
		},
	}

	events := PatternToEvents(mapping)
	require.Len(t, events, 1, "only motor 0 is non-silent")

	ev := events[0]
	assert.Equal(t, "Explosion", ev.Name)
	assert.ElementsMatch(t, []string{"Bhaptics", "Bhaptics_Explosion"}, ev.Tags)
}

func TestPatternToEventsHandlesEmptyPatterns(t *testing.T) {
	mapping := HapticMapping{Key: "Quiet"}
	events := PatternToEvents(mapping)
	assert.Empty(t, events)
}
