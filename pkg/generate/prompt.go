package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// WordsPromptFile is the file name of the related-words template inside a
// prompts directory.
const WordsPromptFile = "generate-words.txt"

const defaultWordsPrompt = `You are a semiotician helping the user explore unlimited semiosis.

The user wants to understand the word "{word}".

{background}
{direction}
{existingWords}

Produce at most 3 relations in the form "new concept -> predicate -> old concept ({word})". Requirements:
1. Give the new concept (newConcept) first, then a predicate (predicate) saying how the new concept explains the old one
2. predicate must be a short predicate phrase, e.g. "forms the basis of", "maintains order in", "reveals the limits of"
3. predicateReason explains why that predicate was chosen (one sentence)
4. briefExplanation briefly describes the new concept itself (one sentence)
5. Prefer abstract concepts that can be expanded further
{directionConstraint}

Reply with JSON only:
{"relatedWords": [{"newConcept": "", "predicate": "", "predicateReason": "", "briefExplanation": ""}]}`

const defaultExplainPrompt = `You are an erudite scholar who explains concepts in elegant language.

Give a complete explanation of the word "{word}".

{background}{context}

Requirements:
1. The explanation should be 50 to 100 words
2. Write like a medieval scholar's gloss, refined and reflective
3. You may draw on the related words to build the explanation
4. Reveal the connections between this word and other concepts

Reply with JSON only:
{"explanation": ""}`

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Prompts holds the prompt templates.
type Prompts struct {
	Words   string
	Explain string
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() Prompts {
	return Prompts{Words: defaultWordsPrompt, Explain: defaultExplainPrompt}
}

// LoadPrompts returns the built-in templates with the related-words template
// replaced by dir/generate-words.txt when that file exists and is not blank.
// An empty dir yields the defaults.
func LoadPrompts(dir string) (Prompts, error) {
	p := DefaultPrompts()
	if dir == "" {
		return p, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, WordsPromptFile))
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prompt template: %w", err)
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		p.Words = s
	}
	return p, nil
}

// Fill replaces every {name} in template with values[name]. Unknown names
// become empty.
func Fill(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		return values[m[1:len(m)-1]]
	})
}

// RelatedPrompt renders the related-words prompt for req.
func (p Prompts) RelatedPrompt(req RelatedRequest) string {
	values := map[string]string{"word": req.Word}
	if req.Background != "" {
		values["background"] = "Background context: " + req.Background
	}
	if req.Direction != "" {
		values["direction"] = "The user wants to explore from this angle: " + req.Direction
		values["directionConstraint"] = "6. Pay particular attention to the requested direction"
	}
	if len(req.ExistingWords) > 0 {
		values["existingWords"] = "Avoid these existing words: " + strings.Join(req.ExistingWords, ", ")
	}
	return Fill(p.Words, values)
}

// ExplainPrompt renders the explanation prompt for req.
func (p Prompts) ExplainPrompt(req ExplainRequest) string {
	values := map[string]string{"word": req.Word}
	if req.Background != "" {
		values["background"] = "Background context: " + req.Background
	}
	if len(req.Context) > 0 {
		values["context"] = "\nRelated words: " + strings.Join(req.Context, ", ")
	}
	return Fill(p.Explain, values)
}
