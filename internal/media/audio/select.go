package audio

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"voicecleaner/internal/media/ffprobe"
)

// Selection describes the audio stream a clean run processes.
type Selection struct {
	Stream         ffprobe.Stream
	Index          int
	RemovedIndices []int
}

// Found reports whether any audio stream was selected.
func (s Selection) Found() bool {
	return s.Index >= 0
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if s.Index < 0 {
		return ""
	}
	return formatStreamSummary(s.Stream)
}

// Select picks the dialogue stream to clean. preferredLanguage is a BCP 47
// or ISO 639 tag such as "en" or "eng"; an empty value disables language
// filtering. Returns Index -1 when the input carries no audio at all.
func Select(streams []ffprobe.Stream, preferredLanguage string) Selection {
	candidates := buildCandidates(streams, preferredLanguage)
	if len(candidates) == 0 {
		return Selection{Index: -1}
	}

	matching := candidates.languageMatches()
	if len(matching) == 0 {
		// No track declares the preferred language; consider everything.
		matching = candidates
	}

	best := matching[0]
	bestScore := score(best)
	for i := 1; i < len(matching); i++ {
		if s := score(matching[i]); s > bestScore {
			best = matching[i]
			bestScore = s
		}
	}

	selection := Selection{
		Stream: best.stream,
		Index:  best.stream.Index,
	}

	removed := make([]int, 0, len(candidates)-1)
	for _, cand := range candidates {
		if cand.stream.Index == best.stream.Index {
			continue
		}
		removed = append(removed, cand.stream.Index)
	}
	sort.Ints(removed)
	selection.RemovedIndices = removed
	return selection
}

// candidate captures the derived metadata used for dialogue ranking.
type candidate struct {
	stream         ffprobe.Stream
	order          int
	languageMatch  bool
	commentaryLike bool
	channels       int
	defaultFlagged bool
}

type candidateList []candidate

func (c candidateList) languageMatches() candidateList {
	result := make(candidateList, 0, len(c))
	for _, cand := range c {
		if cand.languageMatch {
			result = append(result, cand)
		}
	}
	return result
}

func score(cand candidate) float64 {
	value := 0.0

	if cand.defaultFlagged {
		value += 100
	}

	// Speech content is mono or stereo in practice; surround mixes are
	// usually music-and-effects heavy and make poor cleaning sources.
	switch {
	case cand.channels == 1 || cand.channels == 2:
		value += 50
	case cand.channels == 0:
		value += 25
	default:
		value += 10
	}

	if cand.commentaryLike {
		value -= 500
	}

	// Prefer earlier tracks when scores tie.
	value -= float64(cand.order) * 0.1

	return value
}

func buildCandidates(streams []ffprobe.Stream, preferredLanguage string) candidateList {
	preferred, preferredOK := parseLanguage(preferredLanguage)

	result := make(candidateList, 0)
	order := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		title := strings.ToLower(stream.Tag("title"))
		cand := candidate{
			stream:         stream,
			order:          order,
			channels:       stream.Channels,
			defaultFlagged: stream.Disposition != nil && stream.Disposition["default"] == 1,
			commentaryLike: detectCommentary(title, stream.Disposition),
		}
		if preferredOK {
			cand.languageMatch = languageMatches(preferred, stream.Tag("language"))
		}
		result = append(result, cand)
		order++
	}
	return result
}

func parseLanguage(value string) (language.Base, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return language.Base{}, false
	}
	tag, err := language.Parse(cleaned)
	if err != nil {
		return language.Base{}, false
	}
	base, confidence := tag.Base()
	return base, confidence > language.No
}

func languageMatches(preferred language.Base, streamLanguage string) bool {
	cleaned := strings.TrimSpace(streamLanguage)
	if cleaned == "" || strings.EqualFold(cleaned, "und") {
		return false
	}
	tag, err := language.Parse(cleaned)
	if err != nil {
		return false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return false
	}
	return base == preferred
}

func detectCommentary(normalizedTitle string, disposition map[string]int) bool {
	if disposition != nil {
		if disposition["comment"] == 1 || disposition["visual_impaired"] == 1 {
			return true
		}
	}
	for _, keyword := range []string{"commentary", "director", "descriptive", "description"} {
		if strings.Contains(normalizedTitle, keyword) {
			return true
		}
	}
	return false
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := strings.ToLower(stream.Tag("language")); lang != "" {
		parts = append(parts, lang)
	}
	codec := stream.CodecLong
	if codec == "" {
		codec = stream.CodecName
	}
	if codec != "" {
		parts = append(parts, codec)
	}
	if stream.Channels > 0 {
		parts = append(parts, strconv.Itoa(stream.Channels)+"ch")
	}
	if title := stream.Tag("title"); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
