package ffmpeg

import (
	"testing"
	"time"
)

func TestProgressParserEmitsOnBlockEnd(t *testing.T) {
	parser := newProgressParser(100)

	if _, ok := parser.feed("out_time_us=25000000"); ok {
		t.Fatal("out_time_us alone should not emit")
	}
	if _, ok := parser.feed("speed=4.0x"); ok {
		t.Fatal("speed alone should not emit")
	}
	update, ok := parser.feed("progress=continue")
	if !ok {
		t.Fatal("progress key should emit an update")
	}
	if update.OutTime != 25*time.Second {
		t.Fatalf("unexpected out time: %s", update.OutTime)
	}
	if update.Percent != 25 {
		t.Fatalf("unexpected percent: %f", update.Percent)
	}
	if update.Speed != 4.0 {
		t.Fatalf("unexpected speed: %f", update.Speed)
	}
	if update.Done {
		t.Fatal("continue block must not be done")
	}
}

func TestProgressParserEndForcesFullPercent(t *testing.T) {
	parser := newProgressParser(100)
	parser.feed("out_time_us=99000000")
	update, ok := parser.feed("progress=end")
	if !ok {
		t.Fatal("expected update")
	}
	if !update.Done {
		t.Fatal("end block must be done")
	}
	if update.Percent != 100 {
		t.Fatalf("end block should report 100%%, got %f", update.Percent)
	}
}

func TestProgressParserUnknownDuration(t *testing.T) {
	parser := newProgressParser(0)
	parser.feed("out_time_us=5000000")
	update, _ := parser.feed("progress=continue")
	if update.Percent != -1 {
		t.Fatalf("unknown duration should report -1 percent, got %f", update.Percent)
	}
}

func TestProgressParserIgnoresGarbage(t *testing.T) {
	parser := newProgressParser(10)
	for _, line := range []string{"", "frame 10", "out_time_us=notanumber", "speed=?"} {
		if _, ok := parser.feed(line); ok {
			t.Fatalf("line %q should not emit", line)
		}
	}
	parser.feed("out_time_us=5000000")
	update, ok := parser.feed("progress=continue")
	if !ok || update.Percent != 50 {
		t.Fatalf("parser state corrupted by garbage lines: %+v ok=%v", update, ok)
	}
}

func TestProgressParserCapsPercent(t *testing.T) {
	parser := newProgressParser(10)
	parser.feed("out_time_us=15000000")
	update, _ := parser.feed("progress=continue")
	if update.Percent != 100 {
		t.Fatalf("percent should cap at 100, got %f", update.Percent)
	}
}
