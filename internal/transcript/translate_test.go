package transcript

import "testing"

func translateFixture() []Segment {
	return Normalize([]RawSegment{
		{ID: 1, Start: "00:00.0", End: "00:02.0", Text: "hello"},
		{ID: 2, Start: "00:02.0", End: "00:04.0", Text: "world"},
		{ID: 3, Start: "00:04.0", End: "00:06.0", Text: "again"},
	}, 0.5)
}

func TestApplyTranslationsMergesByID(t *testing.T) {
	segments := translateFixture()
	out := ApplyTranslations(segments, []Translation{
		{ID: 3, Text: "de novo"},
		{ID: 1, Text: "olá"},
		{ID: 2, Text: "mundo"},
	})
	want := []string{"olá", "mundo", "de novo"}
	for i, seg := range out {
		if seg.Text != want[i] {
			t.Fatalf("segment %d text = %q, want %q", seg.ID, seg.Text, want[i])
		}
		if seg.TextOriginal != segments[i].TextOriginal {
			t.Fatalf("segment %d original text changed", seg.ID)
		}
	}
}

func TestApplyTranslationsCountMismatchKeepsEverySegment(t *testing.T) {
	segments := translateFixture()

	// Fewer rows than segments: the provider merged lines. No partial
	// application, every segment keeps its untranslated text.
	out := ApplyTranslations(segments, []Translation{
		{ID: 1, Text: "olá"},
		{ID: 2, Text: "mundo"},
	})
	for i, seg := range out {
		if seg.Text != segments[i].Text {
			t.Fatalf("segment %d text = %q, want unchanged %q", seg.ID, seg.Text, segments[i].Text)
		}
	}

	// More rows than segments: same rule.
	out = ApplyTranslations(segments, []Translation{
		{ID: 1, Text: "olá"},
		{ID: 2, Text: "mundo"},
		{ID: 3, Text: "de novo"},
		{ID: 4, Text: "extra"},
	})
	for i, seg := range out {
		if seg.Text != segments[i].Text {
			t.Fatalf("segment %d text = %q, want unchanged %q", seg.ID, seg.Text, segments[i].Text)
		}
	}
}

func TestApplyTranslationsSkipsEmptyRows(t *testing.T) {
	segments := translateFixture()
	out := ApplyTranslations(segments, []Translation{
		{ID: 1, Text: "olá"},
		{ID: 2, Text: ""},
		{ID: 3, Text: "de novo"},
	})
	if out[1].Text != "world" {
		t.Fatalf("empty row must keep the original, got %q", out[1].Text)
	}
	if out[0].Text != "olá" || out[2].Text != "de novo" {
		t.Fatal("non-empty rows must still apply")
	}
}

func TestApplyTranslationsDoesNotAliasInput(t *testing.T) {
	segments := translateFixture()
	out := ApplyTranslations(segments, nil)
	out[0].Text = "mutated"
	if segments[0].Text != "hello" {
		t.Fatal("ApplyTranslations must return a copy")
	}
}
