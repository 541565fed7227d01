package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

// excludedPattern matches a Satsang Diksha passage up to the next blank-line
// gap or the end of the text.
var excludedPattern = regexp.MustCompile(`(?is)Satsang Diksha Shlok.*?(\n\s*\n|\z)`)

// StripExcluded removes every Satsang Diksha passage from class text. The
// gap that ends a passage is kept so neighbouring sections stay apart.
func StripExcluded(text string) string {
	return excludedPattern.ReplaceAllString(text, "${1}")
}

// systemInstruction locks the model to the supplied class material.
const systemInstruction = `You are generating quiz questions in STRICT CONTEXT-LOCKED MODE.

The class material supplied with the task is your only source of truth.

Context
- Do not use, recall, infer or supplement any outside knowledge: no traditional
  interpretations, no commonly known explanations, no expanded scripture names.
- A term, reference or wording that does not appear verbatim in the material
  does not exist for you.

Language and script
- Never translate the material into English or any other language.
- Questions and options use the language and script of the material exactly.
- Do not ask for English meanings of Gujarati words.

Quotations and references
- Quotations are verbatim and character-accurate.
- References (for example Vachanamrut identifiers) are written exactly as in the
  material. Do not expand abbreviations such as "Vach. G.P. 1" or normalise them.

Fill in the blanks
- When a question has several blanks, every option carries all missing words in
  one string, for example "seva, suhradbhav". Multi-select is not supported.
- Wrong options are plausible, taken from the same material, and wrong for the
  specific quotation.

Correctness
- Every correct answer is directly and unambiguously supported by the material.
- If there is any doubt, skip the question. Fewer questions are better than
  inaccurate ones.

Exclusion
- Content under any heading containing "Satsang Diksha Shloka" is excluded. Do not
  quote it, reference it or test it.

Output
Respond with a single JSON object:
{"quiz_title": string, "questions": [{"id": string, "type": "mcq",
"question_text": string, "options": [string], "correct_answer": string,
"explanation": string, "source_reference": string}]}`

// SystemInstruction returns the instruction sent with every generation.
func SystemInstruction() string {
	return systemInstruction
}

// wrapClass frames one class document inside a combined review source.
func wrapClass(classID int, text string) string {
	return fmt.Sprintf("--- Class %d Content ---\n%s\n----------------", classID, text)
}

func classQuizPrompt(classID string, source string, pool int) string {
	var sb strings.Builder
	writeSource(&sb, source)
	fmt.Fprintf(&sb, "TASK: Generate a pool of %d HIGH-QUALITY questions based on Class %s.\n", pool, classID)
	sb.WriteString("- Ensure questions cover different shloks if possible.\n")
	sb.WriteString("- Unique questions only.\n")
	return sb.String()
}

func miniReviewPrompt(start, end int, source string, pool int) string {
	var sb strings.Builder
	writeSource(&sb, source)
	fmt.Fprintf(&sb, "TASK: Generate a pool of %d HIGH-QUALITY questions for a Mini-Review.\n", pool)
	fmt.Fprintf(&sb, "- Range: Class %d to Class %d.\n", start, end)
	sb.WriteString("- Distributed evenly.\n")
	return sb.String()
}

func writeSource(sb *strings.Builder, source string) {
	sb.WriteString("SOURCE CONTENT:\n\"\"\"\n")
	sb.WriteString(source)
	sb.WriteString("\n\"\"\"\n\n")
}
