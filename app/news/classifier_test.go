package news

import "testing"

func TestClassify_HintWinsRegardlessOfContent(t *testing.T) {
	// Content is saturated with technology keywords; the hint must
	// still decide.
	got := Classify("x", "software startup smartphone google microsoft chip", "Sports")

	if got != CategorySports {
		t.Errorf("Expected sports from hint, got %s", got)
	}
}

func TestClassify_HintCaseInsensitive(t *testing.T) {
	for _, hint := range []string{"FINTECH", "Fintech", " fintech "} {
		if got := Classify("a", "b", hint); got != CategoryFintech {
			t.Errorf("Hint %q: expected fintech, got %s", hint, got)
		}
	}
}

func TestClassify_SynonymHintMapsToGeneral(t *testing.T) {
	if got := Classify("a", "b", "health"); got != CategoryGeneral {
		t.Errorf("Expected health hint to map to general, got %s", got)
	}
}

func TestClassify_UnknownHintFallsThroughToKeywords(t *testing.T) {
	got := Classify("Cricket final", "The championship match at the stadium", "bogus")

	if got != CategorySports {
		t.Errorf("Expected sports from keywords, got %s", got)
	}
}

func TestClassify_KeywordScoring(t *testing.T) {
	cases := []struct {
		title   string
		content string
		want    Category
	}{
		{"Fed decision", "market stocks inflation investor earnings", CategoryBusiness},
		{"New telescope", "nasa space research scientist", CategoryScience},
		{"Bitcoin rally", "cryptocurrency blockchain wallet", CategoryFintech},
		{"Oscar night", "movie actor celebrity box office", CategoryEntertainment},
	}

	for _, tc := range cases {
		if got := Classify(tc.title, tc.content, ""); got != tc.want {
			t.Errorf("Classify(%q): expected %s, got %s", tc.title, tc.want, got)
		}
	}
}

func TestClassify_NoMatchesReturnsGeneral(t *testing.T) {
	if got := Classify("Untitled", "nothing recognizable here", ""); got != CategoryGeneral {
		t.Errorf("Expected general fallback, got %s", got)
	}
}

func TestClassify_TieKeepsFirstSeenCategory(t *testing.T) {
	// One world keyword and one science keyword: world is declared
	// first in the scoring order, so it must win the tie.
	got := Classify("", "the summit discussed climate", "")

	if got != CategoryWorld {
		t.Errorf("Expected world on tie, got %s", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	first := Classify("Chip shortage", "software chip startup market", "")
	for i := 0; i < 20; i++ {
		if got := Classify("Chip shortage", "software chip startup market", ""); got != first {
			t.Fatalf("Classification not deterministic: %s then %s", first, got)
		}
	}
}

func TestClassify_AlwaysReturnsValidCategory(t *testing.T) {
	inputs := [][3]string{
		{"", "", ""},
		{"title", "content", "garbage-hint"},
		{"market nasa cricket movie", "election bitcoin", ""},
	}

	for _, in := range inputs {
		got := Classify(in[0], in[1], in[2])
		if _, ok := ParseCategory(string(got)); !ok {
			t.Errorf("Classify returned invalid category %q for %v", got, in)
		}
	}
}
