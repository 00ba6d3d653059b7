package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// Progress reports apply-pass advancement decoded from ffmpeg's -progress
// output.
type Progress struct {
	OutTime time.Duration
	// Percent is derived from the source duration; -1 when the duration is
	// unknown.
	Percent float64
	Speed   float64
	Done    bool
}

// progressParser accumulates the key=value blocks ffmpeg writes to the
// progress pipe. A block ends with the "progress" key, at which point one
// Progress update is emitted.
type progressParser struct {
	durationSeconds float64
	outTime         time.Duration
	speed           float64
}

func newProgressParser(durationSeconds float64) *progressParser {
	return &progressParser{durationSeconds: durationSeconds}
}

func (p *progressParser) feed(line string) (Progress, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return Progress{}, false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds in current ffmpeg releases.
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed >= 0 {
			p.outTime = time.Duration(parsed) * time.Microsecond
		}
		return Progress{}, false
	case "speed":
		if parsed, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil {
			p.speed = parsed
		}
		return Progress{}, false
	case "progress":
		update := Progress{
			OutTime: p.outTime,
			Percent: p.percent(),
			Speed:   p.speed,
			Done:    value == "end",
		}
		if update.Done && update.Percent >= 0 {
			update.Percent = 100
		}
		return update, true
	default:
		return Progress{}, false
	}
}

func (p *progressParser) percent() float64 {
	if p.durationSeconds <= 0 {
		return -1
	}
	percent := p.outTime.Seconds() / p.durationSeconds * 100
	if percent > 100 {
		percent = 100
	}
	return percent
}
