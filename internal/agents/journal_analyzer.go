package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/llm"
)

// JournalAnalysis is the mood/category report for one journal entry.
type JournalAnalysis struct {
	Mood     string `json:"mood"`
	Category string `json:"category"`
	Analysis string `json:"analysis"`
}

var journalMoods = []string{
	"happy", "sad", "angry", "anxious", "calm",
	"excited", "frustrated", "hopeful", "lonely", "grateful",
}

var journalCategories = []string{
	"general", "emotions", "relationships", "work", "health", "goals", "reflection",
}

func (a JournalAnalysis) validate() error {
	if !contains(journalMoods, a.Mood) {
		return fmt.Errorf("invalid mood %q", a.Mood)
	}
	if !contains(journalCategories, a.Category) {
		return fmt.Errorf("invalid category %q", a.Category)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// JournalAnalyzerAgent classifies the mood and category of a journal
// entry and writes the analysis as an artifact.
type JournalAnalyzerAgent struct {
	model     llm.Model
	artifacts *ArtifactWriter
}

type JournalAnalyzerDependencies struct {
	Model     llm.Model
	Artifacts *ArtifactWriter
}

func NewJournalAnalyzerAgent(deps JournalAnalyzerDependencies) *JournalAnalyzerAgent {
	return &JournalAnalyzerAgent{
		model:     deps.Model,
		artifacts: deps.Artifacts,
	}
}

func (a *JournalAnalyzerAgent) Run(ctx context.Context, state domain.WorkflowState) (domain.WorkflowState, error) {
	entry := ""
	if state.UserInput != nil {
		entry = state.UserInput.Response
	}

	prompt := fmt.Sprintf("# Journal Entry:\n%s\n\nAnalyze the journal entry.", entry)

	var analysis JournalAnalysis
	if err := llm.GenerateObject(ctx, a.model, llm.GenerateRequest{
		System: journalAnalyzerPrompt,
		Prompt: prompt,
	}, &analysis); err != nil {
		return state, fmt.Errorf("%w: %v", domain.ErrAgentFailed, err)
	}

	if err := analysis.validate(); err != nil {
		return state, fmt.Errorf("%w: %v", domain.ErrAgentFailed, err)
	}

	markdown := FormatJournalAnalysis(analysis)

	path, err := a.artifacts.Write(state.WorkflowID, markdown)
	if err != nil {
		return state, err
	}

	log.Info().Str("workflow_id", state.WorkflowID).Str("path", path).
		Str("mood", analysis.Mood).Str("category", analysis.Category).
		Msg("Journal analysis completed")

	state.JournalAnalysis = markdown
	return state, nil
}

// FormatJournalAnalysis renders the analysis as markdown.
func FormatJournalAnalysis(analysis JournalAnalysis) string {
	sections := []string{
		"# Journal Intent Analysis",
		fmt.Sprintf("- **Mood**: %s", analysis.Mood),
		fmt.Sprintf("- **Category**: %s", analysis.Category),
		"\n## Analysis",
		analysis.Analysis,
	}
	return strings.Join(sections, "\n") + "\n"
}
