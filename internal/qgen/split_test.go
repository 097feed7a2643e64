package qgen

import "testing"

func TestSplitMixed_LargePaper(t *testing.T) {
	req := fallbackReq(FormatMixed, 23)
	split := splitMixed(req, 15)

	if split.mcq.Count != 15 || split.mcq.Format != FormatMCQ {
		t.Errorf("mcq part: count = %d, format = %q", split.mcq.Count, split.mcq.Format)
	}
	if split.short.Count != 8 || split.short.Format != FormatShortAnswer {
		t.Errorf("short part: count = %d, format = %q", split.short.Count, split.short.Format)
	}
	if split.short.Seed == req.Seed {
		t.Errorf("short part must not reuse the mcq seed")
	}
}

func TestSplitMixed_SmallPaperAllMCQ(t *testing.T) {
	split := splitMixed(fallbackReq(FormatMixed, 10), 15)

	if split.mcq.Count != 10 {
		t.Errorf("mcq count = %d, want 10", split.mcq.Count)
	}
	if split.short.Count != 0 {
		t.Errorf("short count = %d, want 0", split.short.Count)
	}
}

func TestInterleave_SeededShuffleIsStable(t *testing.T) {
	req := fallbackReq(FormatMixed, 0)
	mcq := GenerateFallback(splitMixed(fallbackReq(FormatMixed, 23), 15).mcq, []string{"Light", "Sound"}, 0, 15)
	short := GenerateFallback(splitMixed(fallbackReq(FormatMixed, 23), 15).short, []string{"Light", "Sound"}, 0, 8)

	a := interleave(append([]Question(nil), mcq...), append([]Question(nil), short...), req.Seed)
	b := interleave(append([]Question(nil), mcq...), append([]Question(nil), short...), req.Seed)

	if len(a) != 23 {
		t.Fatalf("got %d questions, want 23", len(a))
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			t.Fatalf("shuffle differs at %d for the same seed", i)
		}
		if a[i].ID != i+1 {
			t.Errorf("question %d: id = %d, want contiguous 1-based ids", i, a[i].ID)
		}
	}
}

func TestInterleave_PreservesKindCounts(t *testing.T) {
	split := splitMixed(fallbackReq(FormatMixed, 23), 15)
	mcq := GenerateFallback(split.mcq, []string{"Light"}, 0, split.mcq.Count)
	short := GenerateFallback(split.short, []string{"Light"}, 0, split.short.Count)

	out := interleave(mcq, short, 7)

	counts := map[Kind]int{}
	for _, q := range out {
		counts[q.Kind]++
	}
	if counts[KindMultipleChoice] != 15 || counts[KindShortAnswer] != 8 {
		t.Errorf("kind counts = %v, want 15 mcq and 8 short", counts)
	}
}
