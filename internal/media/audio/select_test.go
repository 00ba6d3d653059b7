package audio

import (
	"testing"

	"voicecleaner/internal/media/ffprobe"
)

func audioStream(index, channels int, tags map[string]string, disposition map[string]int) ffprobe.Stream {
	return ffprobe.Stream{
		Index:       index,
		CodecType:   "audio",
		CodecName:   "aac",
		Channels:    channels,
		Tags:        tags,
		Disposition: disposition,
	}
}

func TestSelectReturnsNotFoundWithoutAudio(t *testing.T) {
	streams := []ffprobe.Stream{{Index: 0, CodecType: "video"}}
	selection := Select(streams, "en")
	if selection.Found() {
		t.Fatalf("expected no selection, got index %d", selection.Index)
	}
}

func TestSelectPrefersPreferredLanguage(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		audioStream(1, 2, map[string]string{"language": "fra"}, nil),
		audioStream(2, 2, map[string]string{"language": "eng"}, nil),
	}
	selection := Select(streams, "en")
	if selection.Index != 2 {
		t.Fatalf("expected English stream 2, got %d", selection.Index)
	}
	if len(selection.RemovedIndices) != 1 || selection.RemovedIndices[0] != 1 {
		t.Fatalf("unexpected removed indices: %v", selection.RemovedIndices)
	}
}

func TestSelectFallsBackWhenNoLanguageMatches(t *testing.T) {
	streams := []ffprobe.Stream{
		audioStream(0, 2, map[string]string{"language": "deu"}, nil),
		audioStream(1, 2, map[string]string{"language": "fra"}, nil),
	}
	selection := Select(streams, "en")
	if selection.Index != 0 {
		t.Fatalf("expected first stream as fallback, got %d", selection.Index)
	}
}

func TestSelectPrefersDefaultDisposition(t *testing.T) {
	streams := []ffprobe.Stream{
		audioStream(0, 2, map[string]string{"language": "eng"}, nil),
		audioStream(1, 2, map[string]string{"language": "eng"}, map[string]int{"default": 1}),
	}
	selection := Select(streams, "en")
	if selection.Index != 1 {
		t.Fatalf("expected default-flagged stream, got %d", selection.Index)
	}
}

func TestSelectPrefersStereoOverSurround(t *testing.T) {
	streams := []ffprobe.Stream{
		audioStream(0, 6, map[string]string{"language": "eng"}, nil),
		audioStream(1, 2, map[string]string{"language": "eng"}, nil),
	}
	selection := Select(streams, "en")
	if selection.Index != 1 {
		t.Fatalf("expected stereo stream, got %d", selection.Index)
	}
}

func TestSelectAvoidsCommentaryTracks(t *testing.T) {
	streams := []ffprobe.Stream{
		audioStream(0, 2, map[string]string{"language": "eng", "title": "Director's Commentary"}, map[string]int{"default": 1}),
		audioStream(1, 2, map[string]string{"language": "eng"}, nil),
	}
	selection := Select(streams, "en")
	if selection.Index != 1 {
		t.Fatalf("expected non-commentary stream, got %d", selection.Index)
	}
}

func TestSelectMatchesISO639TwoAndThreeLetterTags(t *testing.T) {
	streams := []ffprobe.Stream{
		audioStream(0, 2, map[string]string{"language": "fr"}, nil),
		audioStream(1, 2, map[string]string{"language": "fre"}, nil),
	}
	selection := Select(streams, "fra")
	if selection.Index != 0 {
		t.Fatalf("expected first French stream, got %d", selection.Index)
	}
}

func TestSelectWithoutLanguagePreferenceKeepsFirst(t *testing.T) {
	streams := []ffprobe.Stream{
		audioStream(0, 2, nil, nil),
		audioStream(1, 2, nil, nil),
	}
	selection := Select(streams, "")
	if selection.Index != 0 {
		t.Fatalf("expected first stream, got %d", selection.Index)
	}
}

func TestSelectionLabel(t *testing.T) {
	selection := Select([]ffprobe.Stream{
		audioStream(0, 2, map[string]string{"language": "eng", "title": "Stereo"}, nil),
	}, "en")
	if selection.Label() == "" {
		t.Fatal("expected non-empty label")
	}
}
