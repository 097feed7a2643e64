package qgen

import "fmt"

// variation is one entry of the fixed phrase-template table the fallback
// generator rotates through. Each entry carries a matched short-answer and
// multiple-choice phrasing pair so both kinds vary in lockstep.
type variation struct {
	shortPrompt  string
	mcqPrompt    string
	shortAnswer  string
	explanation  string
	optionPrefix string
}

var variations = []variation{
	{
		shortPrompt:  "Explain the significance of",
		mcqPrompt:    "What is an important concept related to",
		shortAnswer:  "significant",
		explanation:  "provides foundational knowledge",
		optionPrefix: "Basic",
	},
	{
		shortPrompt:  "Describe the importance of",
		mcqPrompt:    "Which aspect is most crucial in",
		shortAnswer:  "important",
		explanation:  "forms the basis for understanding",
		optionPrefix: "Advanced",
	},
	{
		shortPrompt:  "Analyze the role of",
		mcqPrompt:    "What makes",
		shortAnswer:  "essential",
		explanation:  "serves as a cornerstone for",
		optionPrefix: "Practical",
	},
	{
		shortPrompt:  "Discuss how",
		mcqPrompt:    "In what way does",
		shortAnswer:  "valuable",
		explanation:  "contributes to comprehensive understanding of",
		optionPrefix: "Theoretical",
	},
	{
		shortPrompt:  "Evaluate the impact of",
		mcqPrompt:    "What is the primary benefit of studying",
		shortAnswer:  "fundamental",
		explanation:  "establishes core principles for",
		optionPrefix: "Applied",
	},
}

var difficultyCycle = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// GenerateFallback synthesizes exactly howMany questions with no network
// calls. Topic selection rotates through the pool independently of phrase
// variation, so topic coverage spreads evenly while phrasing still varies.
// The same (request, topics, startIndex, howMany) always yields identical
// output, which lets the orchestrator advance startIndex across top-ups
// without ever repeating earlier slots in the same result set.
func GenerateFallback(req Request, topics []string, startIndex, howMany int) []Question {
	if howMany <= 0 || len(topics) == 0 {
		return nil
	}

	kind := fallbackKind(req.Format)
	out := make([]Question, 0, howMany)

	for i := range howMany {
		topic := topics[(startIndex+i)%len(topics)]
		v := variations[mod(req.Seed+int64(startIndex)+int64(i), len(variations))]
		diff := difficultyCycle[(startIndex+i)%len(difficultyCycle)]

		q := Question{
			ID:         startIndex + i + 1,
			Kind:       kind,
			Topic:      topic,
			Difficulty: diff,
			Marks:      1,
		}

		switch kind {
		case KindMultipleChoice:
			q.Text = fmt.Sprintf("%s %s in %s for Grade %s?", v.mcqPrompt, topic, req.Subject, req.Grade)
			q.Options = []string{
				fmt.Sprintf("%s understanding of %s", v.optionPrefix, topic),
				fmt.Sprintf("%s application of %s", v.optionPrefix, topic),
				fmt.Sprintf("%s context of %s", v.optionPrefix, topic),
				fmt.Sprintf("%s implications of %s", v.optionPrefix, topic),
			}
			// Correct answer is always the first option; callers that
			// present options to students are expected to shuffle.
			q.Answer = q.Options[0]
			q.Explanation = fmt.Sprintf("This question tests understanding of how %s relates to broader %s concepts.", topic, req.Subject)
		case KindExtended:
			q.Text = fmt.Sprintf("Analyze and explain in detail how %s impacts the overall understanding of %s for Grade %s students. Provide examples and discuss its practical applications.", topic, req.Subject, req.Grade)
			q.Answer = fmt.Sprintf("%s plays a crucial role in %s education at Grade %s level. Students should understand its theoretical foundations, practical applications, and connections to other concepts.", topic, req.Subject, req.Grade)
			q.Explanation = fmt.Sprintf("This extended question requires comprehensive understanding and analytical skills about %s.", topic)
			q.Marks = 5
		default:
			q.Text = fmt.Sprintf("%s %s in %s for Grade %s students.", v.shortPrompt, topic, req.Subject, req.Grade)
			q.Answer = fmt.Sprintf("%s is %s in %s as it %s essential for Grade %s curriculum.", topic, v.shortAnswer, req.Subject, v.explanation, req.Grade)
			q.Explanation = fmt.Sprintf("This question tests understanding of how %s relates to broader %s concepts.", topic, req.Subject)
		}

		out = append(out, q)
	}

	return out
}

// mod is the floored modulus, so negative seeds still index the variation
// table instead of panicking.
func mod(x int64, n int) int {
	m := int(x % int64(n))
	if m < 0 {
		m += n
	}
	return m
}

// fallbackKind maps a paper format to the question kind the fallback
// generator emits. Mixed requests are split before reaching the fallback,
// so a Mixed format here degrades to short answer.
func fallbackKind(f Format) Kind {
	switch f {
	case FormatMCQ:
		return KindMultipleChoice
	case FormatExtended:
		return KindExtended
	default:
		return KindShortAnswer
	}
}
