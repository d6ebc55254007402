package gamesession

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/event"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/gamesession/devicemaps"
)

// HapticMapping is one catalog entry: a named event ("key") composed of one
// or more audio-driven waveform patterns across device locations.
type HapticMapping struct {
	ID                string             `json:"id"`
	DeployID          string             `json:"deployId"`
	Enable            bool               `json:"enable"`
	Intensity         int32              `json:"intensity"`
	Key               string             `json:"key"`
	Category          string             `json:"category"`
	Description       string             `json:"description"`
	UpdateTime        uint64             `json:"updateTime"`
	TactFilePatterns  []string           `json:"tactFilePatterns"`
	AudioFilePatterns []AudioFilePattern `json:"audioFilePatterns"`
	EventTime         uint32             `json:"eventTime"`
}

// AudioFilePattern is one audio-driven clip within a mapping.
type AudioFilePattern struct {
	PatternID  string      `json:"patternId"`
	SnapshotID string      `json:"snapshotId"`
	Position   string      `json:"position"`
	Clip       PatternClip `json:"clip"`
}

// PatternClip is the per-motor waveform data for one audio clip, keyed by
// device location.
type PatternClip struct {
	ID       string                   `json:"id"`
	Name     string                   `json:"name"`
	Version  int32                    `json:"version"`
	Duration uint32                   `json:"duration"` // milliseconds
	Patterns map[string][]PatternLine `json:"patterns"`
}

// PatternLine is one time-step's raw motor byte values across a device,
// base64-encoded on the wire.
type PatternLine []byte

func (p PatternLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(p))
}

func (p *PatternLine) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("gamesession: decode pattern line: %w", err)
	}
	*p = decoded
	return nil
}

// waveformScale converts a raw motor byte ([0,125] on the wire) into a
// normalized intensity.
const waveformScale = 125.0

// PatternToEvents converts one catalog mapping into the batch of Events
// that reproduce it: one event per motor with at least one non-silent
// step, tagged so the whole mapping's playback can be torn down together.
func PatternToEvents(mapping HapticMapping) []*event.Event {
	tags := []string{"Bhaptics", fmt.Sprintf("Bhaptics_%s", mapping.Key)}

	var events []*event.Event
	for _, audio := range mapping.AudioFilePatterns {
		dur := time.Duration(audio.Clip.Duration) * time.Millisecond

		for locName, lines := range audio.Clip.Patterns {
			loc := devicemaps.ParseLocation(locName)
			motorSteps := convertToSteps(loc, lines)

			for index, steps := range motorSteps {
				if allSilent(steps) {
					continue
				}
				motorID, ok := loc.ID(index)
				if !ok {
					continue
				}

				ev, err := event.New(mapping.Key, event.Effect{
					Type:   event.SingleNode,
					NodeID: motorID,
				}, steps, dur, tags)
				if err != nil {
					continue
				}
				events = append(events, ev)
			}
		}
	}

	return events
}

// convertToSteps returns steps[motorIndex][timeStep] = normalized
// intensity, scaling each raw waveform byte by waveformScale.
func convertToSteps(loc devicemaps.Location, lines []PatternLine) [][]float32 {
	motors := loc.MotorCount()
	if motors == 0 {
		return nil
	}

	steps := len(lines)
	matrix := make([][]float32, motors)
	for m := range matrix {
		matrix[m] = make([]float32, steps)
	}

	for t, line := range lines {
		for m, b := range line {
			if m >= motors {
				break
			}
			matrix[m][t] = float32(b) / waveformScale
		}
	}

	return matrix
}

func allSilent(steps []float32) bool {
	for _, v := range steps {
		if v != 0 {
			return false
		}
	}
	return true
}
