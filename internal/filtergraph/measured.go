package filtergraph

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Measured holds the loudness statistics printed by a loudnorm measurement
// pass. Values are kept as the exact strings ffmpeg printed.
type Measured struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
}

// loudnormJSON matches the JSON block loudnorm prints at the end of stderr.
var loudnormJSON = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseMeasurement extracts the loudnorm statistics block from ffmpeg stderr
// output.
func ParseMeasurement(stderr []byte) (Measured, error) {
	match := loudnormJSON.Find(stderr)
	if match == nil {
		return Measured{}, fmt.Errorf("loudnorm measurement: no JSON block in ffmpeg output: %s", tail(stderr, 512))
	}

	var measured Measured
	if err := json.Unmarshal(match, &measured); err != nil {
		return Measured{}, fmt.Errorf("loudnorm measurement: decode stats: %w", err)
	}
	if measured.InputI == "" || measured.TargetOffset == "" {
		return Measured{}, fmt.Errorf("loudnorm measurement: incomplete stats: %s", match)
	}
	return measured, nil
}

func tail(data []byte, n int) []byte {
	if len(data) <= n {
		return data
	}
	return data[len(data)-n:]
}
