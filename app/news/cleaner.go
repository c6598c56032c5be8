package news

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	paragraphMin = 150
	paragraphMax = 300
)

// maxCleanPasses bounds the fixpoint loop in Clean. Real feeds
// double-escape at most once or twice; anything deeper stabilizes well
// within this cap.
const maxCleanPasses = 10

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// entityPairs decodes the entities commonly seen in feed snippets.
// "&amp;" is decoded last so the named entities are resolved before
// the ampersands that introduce the next escaping level.
var entityPairs = []struct{ from, to string }{
	{"&nbsp;", " "},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
	{"&rsquo;", "'"},
	{"&lsquo;", "'"},
	{"&rdquo;", `"`},
	{"&ldquo;", `"`},
	{"&ndash;", "-"},
	{"&mdash;", "-"},
	{"&hellip;", "..."},
	{"&amp;", "&"},
}

var allowedPunct = map[rune]bool{
	'.': true, ',': true, '!': true, '?': true, ';': true, ':': true,
	'\'': true, '"': true, '(': true, ')': true, '-': true, '%': true,
	'$': true, '&': true, '/': true, '@': true, '+': true,
}

// Clean strips markup, entities, emoji and stray symbols from raw
// upstream text and collapses whitespace. Deterministic and total:
// empty input yields an empty string. The transform is reapplied until
// the text stops changing, so double-escaped entities ("&amp;lt;")
// decode fully and cleaning an already cleaned string is a no-op.
func Clean(text string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := cleanPass(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func cleanPass(text string) string {
	if text == "" {
		return ""
	}

	text = scriptRe.ReplaceAllString(text, " ")
	text = styleRe.ReplaceAllString(text, " ")
	// Replace tags with a space so adjacent words don't glue together.
	text = tagRe.ReplaceAllString(text, " ")

	for _, e := range entityPairs {
		text = strings.ReplaceAll(text, e.from, e.to)
	}

	text = strings.Map(func(r rune) rune {
		if isEmoji(r) {
			return -1
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if allowedPunct[r] {
			return r
		}
		return -1
	}, text)

	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // pictographs, emoticons, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, ZWJ
		return true
	}
	return false
}

// SplitIntoParagraphs breaks cleaned text into typing-friendly chunks.
// Sentences are packed greedily into paragraphs targeting 150-300
// characters; an undersized trailing leftover is merged into the
// previous paragraph. Not used on the sync path, storage keeps content
// as a single block.
func SplitIntoParagraphs(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var paragraphs []string
	var current string

	for _, sentence := range sentences {
		if current == "" {
			current = sentence
			continue
		}
		candidate := current + " " + sentence
		if len(candidate) <= paragraphMax {
			current = candidate
		} else if len(current) >= paragraphMin {
			paragraphs = append(paragraphs, current)
			current = sentence
		} else {
			// Accept overrunning the max to respect the minimum.
			current = candidate
		}
	}

	if current != "" {
		if len(current) < paragraphMin && len(paragraphs) > 0 {
			paragraphs[len(paragraphs)-1] += " " + current
		} else {
			paragraphs = append(paragraphs, current)
		}
	}

	return paragraphs
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Sentence ends at terminal punctuation followed by space or EOF.
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
