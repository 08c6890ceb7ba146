package generate

import "context"

// MaxConcepts is the most concepts a single expansion yields.
const MaxConcepts = 3

// Generator produces related concepts and explanations.
type Generator interface {
	// Related returns up to MaxConcepts concepts that explain req.Word.
	Related(ctx context.Context, req RelatedRequest) ([]Concept, error)
	// Explain returns a full explanation of req.Word.
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}

// Concept is one generated concept and how it relates to the expanded word.
type Concept struct {
	// Word is the new concept.
	Word string `json:"newConcept"`
	// Relation is a short predicate phrase linking Word to the expanded word.
	Relation string `json:"predicate"`
	// Reason says why the relation was chosen.
	Reason string `json:"predicateReason"`
	// Gloss is a brief explanation of Word itself.
	Gloss string `json:"briefExplanation"`
}

// RelatedRequest asks for concepts related to Word.
type RelatedRequest struct {
	Word       string
	Background string
	// Direction optionally steers the exploration.
	Direction string
	// ExistingWords should not be proposed again.
	ExistingWords []string
}

// ExplainRequest asks for an explanation of Word.
type ExplainRequest struct {
	Word       string
	Background string
	// Context lists nearby words the explanation may refer to.
	Context []string
}
