package qgen

import "math/rand"

// mixedSplit is the two sub-requests a Mixed paper decomposes into.
type mixedSplit struct {
	mcq   Request
	short Request
}

// splitMixed decomposes a Mixed request into an MCQ part and a short
// answer remainder. The MCQ part takes up to mcqPortion questions; for
// small papers the whole request may become MCQ. The short part gets a
// shifted seed so its fallback phrasing does not echo the MCQ part.
func splitMixed(req Request, mcqPortion int) mixedSplit {
	mcqCount := mcqPortion
	if mcqCount > req.Count {
		mcqCount = req.Count
	}

	mcq := req
	mcq.Format = FormatMCQ
	mcq.Count = mcqCount

	short := req
	short.Format = FormatShortAnswer
	short.Count = req.Count - mcqCount
	short.Seed = req.Seed + 1000

	return mixedSplit{mcq: mcq, short: short}
}

// interleave merges the two halves of a Mixed paper into one seeded
// shuffle and renumbers. The same seed always yields the same order.
func interleave(mcq, short []Question, seed int64) []Question {
	out := make([]Question, 0, len(mcq)+len(short))
	out = append(out, mcq...)
	out = append(out, short...)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	renumber(out)
	return out
}

// renumber assigns contiguous 1-based IDs in slice order.
func renumber(questions []Question) {
	for i := range questions {
		questions[i].ID = i + 1
	}
}
