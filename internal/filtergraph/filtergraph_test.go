package filtergraph

import (
	"strings"
	"testing"

	"voicecleaner/internal/config"
)

func TestBaseRendersDefaultChain(t *testing.T) {
	cfg := config.Default()
	got := Base(cfg.Filters)
	want := "highpass=f=90,lowpass=f=8000,anlmdn=s=0.00005:p=0.05," +
		"agate=threshold=-35dB:ratio=2:attack=10:release=120," +
		"acompressor=threshold=-18dB:ratio=3:attack=5:release=80:makeup=4," +
		"alimiter=limit=0.98"
	if got != want {
		t.Fatalf("base chain mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestMeasureAppendsLoudnormJSONStage(t *testing.T) {
	cfg := config.Default()
	got := Measure(&cfg)
	if !strings.HasPrefix(got, Base(cfg.Filters)+",") {
		t.Fatalf("measure filter does not start with base chain: %s", got)
	}
	if !strings.HasSuffix(got, "loudnorm=I=-16:TP=-1.5:LRA=11:print_format=json") {
		t.Fatalf("unexpected loudnorm stage: %s", got)
	}
}

func TestApplyFeedsMeasuredValuesBack(t *testing.T) {
	cfg := config.Default()
	measured := Measured{
		InputI:       "-23.47",
		InputTP:      "-4.12",
		InputLRA:     "7.30",
		InputThresh:  "-33.95",
		TargetOffset: "0.25",
	}
	got := Apply(&cfg, measured)
	for _, fragment := range []string{
		"measured_I=-23.47",
		"measured_TP=-4.12",
		"measured_LRA=7.30",
		"measured_thresh=-33.95",
		"offset=0.25",
		"linear=true",
		"print_format=summary",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("apply filter missing %q: %s", fragment, got)
		}
	}
}

func TestParseMeasurementFromStderr(t *testing.T) {
	stderr := []byte(`[Parsed_loudnorm_5 @ 0x560]
{
	"input_i" : "-23.47",
	"input_tp" : "-4.12",
	"input_lra" : "7.30",
	"input_thresh" : "-33.95",
	"output_i" : "-16.01",
	"output_tp" : "-1.50",
	"output_lra" : "5.90",
	"output_thresh" : "-26.23",
	"normalization_type" : "dynamic",
	"target_offset" : "0.25"
}
`)
	measured, err := ParseMeasurement(stderr)
	if err != nil {
		t.Fatalf("ParseMeasurement: %v", err)
	}
	if measured.InputI != "-23.47" {
		t.Fatalf("input_i: got %q", measured.InputI)
	}
	if measured.TargetOffset != "0.25" {
		t.Fatalf("target_offset: got %q", measured.TargetOffset)
	}
}

func TestParseMeasurementRejectsMissingBlock(t *testing.T) {
	if _, err := ParseMeasurement([]byte("frame= 100 fps= 25")); err == nil {
		t.Fatal("expected error for stderr without JSON block")
	}
}

func TestParseMeasurementRejectsIncompleteStats(t *testing.T) {
	if _, err := ParseMeasurement([]byte(`{"input_i": "-23.0"}`)); err == nil {
		t.Fatal("expected error for incomplete stats")
	}
}

func TestBaseUsesConfiguredParameters(t *testing.T) {
	cfg := config.Default()
	cfg.Filters.HighpassHz = 120
	cfg.Filters.LowpassHz = 10000
	cfg.Filters.CompressorRatio = 4.5
	got := Base(cfg.Filters)
	for _, fragment := range []string{"highpass=f=120", "lowpass=f=10000", "ratio=4.5"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("chain missing %q: %s", fragment, got)
		}
	}
}
