package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/similarity"
)

// maxPromptExamples caps the history examples sent to the model.
const maxPromptExamples = 5

// AIClient sends a classification prompt to a language model and returns
// its raw answer.
type AIClient interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// AIStrategy asks a language model to pick one of the known categories.
type AIStrategy struct {
	client     AIClient
	categories []string
	matcher    similarity.Matcher
	logger     logging.Logger
}

// NewAIStrategy returns an AIStrategy restricted to categories.
func NewAIStrategy(client AIClient, categories []string, matcher similarity.Matcher, logger logging.Logger) *AIStrategy {
	if matcher == nil {
		matcher = similarity.NewLevenshteinMatcher()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &AIStrategy{client: client, categories: categories, matcher: matcher, logger: logger}
}

func (s *AIStrategy) Name() string {
	return "AI"
}

func (s *AIStrategy) Categorize(ctx context.Context, in Input) (string, bool, error) {
	if s.client == nil {
		return "", false, nil
	}

	prompt := BuildPrompt(in, s.categories, s.examples(in))
	answer, err := s.client.Classify(ctx, prompt)
	if err != nil {
		return "", false, fmt.Errorf("model call failed: %w", err)
	}

	category, ok := CleanResponse(answer, s.categories)
	if !ok {
		s.logger.Warn("Model returned an unknown category",
			logging.F(logging.FieldReason, answer))
		return "", false, nil
	}
	if category == models.CategoryUncategorized {
		return "", false, nil
	}
	return category, true, nil
}

// examples picks the past records whose descriptions are closest to the
// one being categorized.
func (s *AIStrategy) examples(in Input) []models.HistoryEntry {
	if len(in.History) == 0 {
		return nil
	}
	descriptions := make([]string, len(in.History))
	for i, h := range in.History {
		descriptions[i] = h.Description
	}
	matches := s.matcher.TopKSimilar(in.Description, descriptions, maxPromptExamples)
	out := make([]models.HistoryEntry, 0, len(matches))
	for _, m := range matches {
		out = append(out, in.History[m.Index])
	}
	return out
}

// BuildPrompt renders the classification request.
func BuildPrompt(in Input, categories []string, examples []models.HistoryEntry) string {
	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = fmt.Sprintf("%q", c)
	}

	var b strings.Builder
	b.WriteString("You are a financial classifier. Given the transaction description and amount, ")
	b.WriteString("classify it into exactly ONE of these categories: [")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString("].\n")
	fmt.Fprintf(&b, "For positive amounts (income): answer %q ONLY if the description explicitly mentions salary terms "+
		"(e.g. 'Pagamento Salário', 'Folha'). Every other inflow (Pix received, refunds, transfers) is %q.\n",
		models.CategorySalary, models.CategoryOtherIncome)
	if len(examples) > 0 {
		b.WriteString("Previously categorized similar transactions:\n")
		for _, ex := range examples {
			fmt.Fprintf(&b, "- %s | %s => %s\n", ex.Description, ex.Amount.StringFixed(2), ex.Category)
		}
	}
	fmt.Fprintf(&b, "Return ONLY the category name. If unsure, answer %q.\n", models.CategoryUncategorized)
	fmt.Fprintf(&b, "Transaction: %s | Amount: %s", in.Description, in.Amount.StringFixed(2))
	return b.String()
}

// CleanResponse maps a raw model answer onto a known category: quotes are
// stripped, then an exact match wins, then the first category the answer
// contains.
func CleanResponse(answer string, categories []string) (string, bool) {
	cleaned := strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(answer))
	if cleaned == "" {
		return "", false
	}
	for _, c := range categories {
		if cleaned == c {
			return c, true
		}
	}
	for _, c := range categories {
		if strings.Contains(cleaned, c) {
			return c, true
		}
	}
	return "", false
}
