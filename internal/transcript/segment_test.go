package transcript

import "testing"

func TestNormalizeParsesAndClamps(t *testing.T) {
	raw := []RawSegment{
		{ID: 1, Start: "00:00.0", End: "00:02.0", Text: "Hi"},
		// End before start: slot clamps to the floor.
		{ID: 2, Start: "00:05.0", End: "00:04.0", Text: "Broken"},
		// Quirk timestamps flow through normalization.
		{ID: 3, Start: "01:45:558", End: "01:47:000", Text: "Quirk"},
	}
	segments := Normalize(raw, 0.5)
	if len(segments) != 3 {
		t.Fatalf("got %d segments", len(segments))
	}
	if segments[0].StartTime != 0 || segments[0].EndTime != 2 {
		t.Fatalf("segment 1 slot = [%v, %v]", segments[0].StartTime, segments[0].EndTime)
	}
	if got := segments[1].SlotSeconds(); got != 0.5 {
		t.Fatalf("clamped slot = %v, want 0.5", got)
	}
	if segments[2].StartTime != 105.558 {
		t.Fatalf("quirk start = %v", segments[2].StartTime)
	}
	for _, seg := range segments {
		if seg.EndTime < seg.StartTime {
			t.Fatalf("segment %d violates end >= start", seg.ID)
		}
		if seg.Text != seg.TextOriginal {
			t.Fatalf("segment %d text should start as the original", seg.ID)
		}
	}
}

func TestNormalizeRewritesDuplicateIDs(t *testing.T) {
	raw := []RawSegment{
		{ID: 1, Start: "00:00.0", End: "00:01.0", Text: "a"},
		{ID: 1, Start: "00:01.0", End: "00:02.0", Text: "b"},
		{ID: 0, Start: "00:02.0", End: "00:03.0", Text: "c"},
	}
	segments := Normalize(raw, 0.5)
	seen := make(map[int]bool)
	for _, seg := range segments {
		if seg.ID <= 0 {
			t.Fatalf("non-positive id %d", seg.ID)
		}
		if seen[seg.ID] {
			t.Fatalf("duplicate id %d survived normalization", seg.ID)
		}
		seen[seg.ID] = true
	}
}

func TestStoreUpdateAndSnapshotIsolation(t *testing.T) {
	store := NewStore()
	store.ReplaceAll(Normalize([]RawSegment{
		{ID: 1, Start: "00:00.0", End: "00:02.0", Text: "one"},
		{ID: 2, Start: "00:02.0", End: "00:04.0", Text: "two"},
	}, 0.5))

	snap := store.Snapshot()
	if err := store.UpdateText(2, "edited"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if snap[1].Text != "two" {
		t.Fatal("snapshot must not observe later edits")
	}

	fresh := store.Snapshot()
	if fresh[1].Text != "edited" {
		t.Fatalf("edit not applied: %q", fresh[1].Text)
	}
	if fresh[1].StartTime != snap[1].StartTime || fresh[1].ID != 2 {
		t.Fatal("UpdateText must only touch the text field")
	}

	if err := store.UpdateText(99, "x"); err == nil {
		t.Fatal("unknown id must error")
	}
}

func TestStoreReplaceAllCopiesInput(t *testing.T) {
	store := NewStore()
	input := []Segment{{ID: 1, Text: "a"}}
	store.ReplaceAll(input)
	input[0].Text = "mutated"
	if store.Snapshot()[0].Text != "a" {
		t.Fatal("store must copy on ReplaceAll")
	}
}
