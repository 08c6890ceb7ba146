package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/matzehuels/rose/pkg/errors"
)

// fakeModel replies with canned content and records the prompts it saw.
type fakeModel struct {
	replies []string
	errs    []error
	prompts []string
}

func (m *fakeModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	i := len(m.prompts)
	m.prompts = append(m.prompts, input[len(input)-1].Content)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.replies) {
		return schema.AssistantMessage("", nil), nil
	}
	return schema.AssistantMessage(m.replies[i], nil), nil
}

func (m *fakeModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("not supported")
}

func newTestGenerator(t *testing.T, m *fakeModel) *ChatGenerator {
	t.Helper()
	g, err := NewChatGeneratorFromModel(m, Config{RateLimit: 1000})
	if err != nil {
		t.Fatal(err)
	}
	g.retry = func(_ context.Context, fn func() error) error {
		var err error
		for i := 0; i < 3; i++ {
			if err = fn(); err == nil {
				return nil
			}
		}
		return err
	}
	return g
}

func TestParseConcepts(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"plain", `{"relatedWords":[{"newConcept":"thorn","predicate":"guards"}]}`, []string{"thorn"}},
		{"fenced", "```json\n{\"relatedWords\":[{\"newConcept\":\"petal\"}]}\n```", []string{"petal"}},
		{"prose around", `Sure! {"relatedWords":[{"newConcept":"stem"}]} Hope this helps.`, []string{"stem"}},
		{"brace in string", `{"relatedWords":[{"newConcept":"set {x}"}]}`, []string{"set {x}"}},
		{"blank and duplicate", `{"relatedWords":[{"newConcept":" "},{"newConcept":"a"},{"newConcept":" a "},{"newConcept":"b"}]}`, []string{"a", "b"}},
		{"capped", `{"relatedWords":[{"newConcept":"a"},{"newConcept":"b"},{"newConcept":"c"},{"newConcept":"d"}]}`, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConcepts(tt.reply)
			if err != nil {
				t.Fatalf("ParseConcepts() error: %v", err)
			}
			var words []string
			for _, c := range got {
				words = append(words, c.Word)
			}
			if strings.Join(words, ",") != strings.Join(tt.want, ",") {
				t.Errorf("words = %v, want %v", words, tt.want)
			}
		})
	}
}

func TestParseConcepts_Invalid(t *testing.T) {
	for _, reply := range []string{"", "no json here", `{"relatedWords": [`} {
		if _, err := ParseConcepts(reply); err == nil {
			t.Errorf("ParseConcepts(%q) should fail", reply)
		}
	}
}

func TestParseExplanation(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{`{"explanation":" A flower. "}`, "A flower."},
		{"```\n{\"explanation\":\"A flower.\"}\n```", "A flower."},
		{"Just prose.", "Just prose."},
	}
	for _, tt := range tests {
		got, err := ParseExplanation(tt.reply)
		if err != nil {
			t.Errorf("ParseExplanation(%q) error: %v", tt.reply, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseExplanation(%q) = %q, want %q", tt.reply, got, tt.want)
		}
	}
}

func TestFill(t *testing.T) {
	got := Fill("{word} and {other}{missing}", map[string]string{"word": "rose", "other": "thorn"})
	if got != "rose and thorn" {
		t.Errorf("Fill() = %q", got)
	}
}

func TestRelatedPrompt(t *testing.T) {
	p := DefaultPrompts()

	bare := p.RelatedPrompt(RelatedRequest{Word: "rose"})
	if !strings.Contains(bare, `"rose"`) {
		t.Error("prompt should name the word")
	}
	if strings.Contains(bare, "{direction}") || strings.Contains(bare, "{existingWords}") {
		t.Error("placeholders should be filled")
	}
	if strings.Contains(bare, "Pay particular attention") {
		t.Error("direction constraint should only appear with a direction")
	}

	full := p.RelatedPrompt(RelatedRequest{
		Word:          "rose",
		Background:    "botany",
		Direction:     "symbolism",
		ExistingWords: []string{"thorn", "petal"},
	})
	for _, want := range []string{"botany", "symbolism", "thorn, petal", "Pay particular attention"} {
		if !strings.Contains(full, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestLoadPrompts(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadPrompts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if p.Words != defaultWordsPrompt {
		t.Error("missing file should keep the default template")
	}

	if err := os.WriteFile(filepath.Join(dir, WordsPromptFile), []byte("  explain {word}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err = LoadPrompts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.RelatedPrompt(RelatedRequest{Word: "rose"}); got != "explain rose" {
		t.Errorf("RelatedPrompt() = %q, want %q", got, "explain rose")
	}
}

func TestChatGenerator_Related(t *testing.T) {
	m := &fakeModel{replies: []string{`{"relatedWords":[{"newConcept":"thorn","predicate":"guards"},{"newConcept":"petal","predicate":"adorns"}]}`}}
	g := newTestGenerator(t, m)

	got, err := g.Related(context.Background(), RelatedRequest{Word: "rose", ExistingWords: []string{"stem"}})
	if err != nil {
		t.Fatalf("Related() error: %v", err)
	}
	if len(got) != 2 || got[0].Word != "thorn" || got[0].Relation != "guards" {
		t.Errorf("Related() = %+v", got)
	}
	if !strings.Contains(m.prompts[0], "stem") {
		t.Error("prompt should list existing words")
	}
}

func TestChatGenerator_RelatedEmpty(t *testing.T) {
	g := newTestGenerator(t, &fakeModel{replies: []string{`{"relatedWords":[]}`}})

	_, err := g.Related(context.Background(), RelatedRequest{Word: "rose"})
	if !errors.Is(err, errors.ErrCodeGeneration) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeGeneration)
	}
}

func TestChatGenerator_RetriesModelErrors(t *testing.T) {
	m := &fakeModel{
		errs:    []error{fmt.Errorf("503")},
		replies: []string{"", `{"explanation":"A flower."}`},
	}
	g := newTestGenerator(t, m)

	got, err := g.Explain(context.Background(), ExplainRequest{Word: "rose"})
	if err != nil {
		t.Fatalf("Explain() error: %v", err)
	}
	if got != "A flower." {
		t.Errorf("Explain() = %q", got)
	}
	if len(m.prompts) != 2 {
		t.Errorf("model calls = %d, want 2", len(m.prompts))
	}
}

func TestChatGenerator_ModelFailure(t *testing.T) {
	boom := fmt.Errorf("down")
	g := newTestGenerator(t, &fakeModel{errs: []error{boom, boom, boom}})

	_, err := g.Explain(context.Background(), ExplainRequest{Word: "rose"})
	if !errors.Is(err, errors.ErrCodeGeneration) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeGeneration)
	}
}

func TestNewChatGenerator_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		code errors.Code
	}{
		{"unsupported provider", Config{Provider: "anthropic", APIKey: "k"}, errors.ErrCodeUnsupported},
		{"missing key", Config{}, errors.ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChatGenerator(context.Background(), tt.cfg)
			if errors.GetCode(err) != tt.code {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
