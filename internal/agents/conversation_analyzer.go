package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/llm"
)

// ConversationReport is the structured output of a conversation analysis.
type ConversationReport struct {
	SessionMetadata      SessionMetadata      `json:"session_metadata"`
	IntentAnalysis       IntentAnalysis       `json:"intent_analysis"`
	EmotionalProfile     EmotionalProfile     `json:"emotional_profile"`
	RelationshipDynamics RelationshipDynamics `json:"relationship_dynamics"`
	ContextualInsights   ContextualInsights   `json:"contextual_insights"`
	Recommendations      Recommendations      `json:"recommendations"`
}

type SessionMetadata struct {
	CompanionName   string `json:"companion_name"`
	CompanionGender string `json:"companion_gender"`
	InteractionType string `json:"interaction_type"`
}

type IntentAnalysis struct {
	PrimaryIntent     string   `json:"primary_intent"`
	SecondaryIntents  []string `json:"secondary_intents"`
	IntentFulfillment string   `json:"intent_fulfillment"`
	EvolvingNeeds     string   `json:"evolving_needs"`
}

type EmotionalProfile struct {
	InitialState     string   `json:"initial_state"`
	EmotionalJourney []string `json:"emotional_journey"`
	FinalState       string   `json:"final_state"`
	EmotionalNeeds   []string `json:"emotional_needs"`
	Triggers         []string `json:"triggers"`
}

type RelationshipDynamics struct {
	InteractionStyle     string   `json:"interaction_style"`
	TrustIndicators      []string `json:"trust_indicators"`
	CompanionPerformance string   `json:"companion_performance"`
	AttachmentSignals    string   `json:"attachment_signals"`
}

type ContextualInsights struct {
	SessionQuality   string   `json:"session_quality"`
	UserEngagement   string   `json:"user_engagement"`
	ConversationFlow string   `json:"conversation_flow"`
	PreferredTopics  []string `json:"preferred_topics"`
	AvoidedTopics    []string `json:"avoided_topics"`
}

type Recommendations struct {
	CompanionImprovements []string `json:"companion_improvements"`
	UserPatterns          string   `json:"user_patterns"`
	FutureSessionGuidance string   `json:"future_session_guidance"`
}

// ConversationAnalyzerAgent reads another agent's finished conversation
// and produces a markdown insight report, persisted through the artifact
// writer.
type ConversationAnalyzerAgent struct {
	model     llm.Model
	history   domain.HistoryStore
	artifacts *ArtifactWriter
}

type ConversationAnalyzerDependencies struct {
	Model     llm.Model
	History   domain.HistoryStore
	Artifacts *ArtifactWriter
}

func NewConversationAnalyzerAgent(deps ConversationAnalyzerDependencies) *ConversationAnalyzerAgent {
	return &ConversationAnalyzerAgent{
		model:     deps.Model,
		history:   deps.History,
		artifacts: deps.Artifacts,
	}
}

// historySource resolves which history stream to analyze. The analyzer
// has no stream of its own.
func historySource(previous domain.AgentKind) (domain.AgentKind, error) {
	switch previous {
	case domain.AgentGeneral, domain.AgentCompanion:
		return previous, nil
	case domain.AgentConversationAnalyzer, domain.AgentConversationSummarizer, domain.AgentJournalAnalyzer:
		return "", fmt.Errorf("%w: %s has no analyzable history", domain.ErrUnknownAgentKind, previous)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownAgentKind, previous)
	}
}

func (a *ConversationAnalyzerAgent) Run(ctx context.Context, state domain.WorkflowState) (domain.WorkflowState, error) {
	source, err := historySource(state.PreviousAgent)
	if err != nil {
		return state, err
	}

	exchanges, err := a.history.LoadOrCreate(ctx, state.WorkflowID, source)
	if err != nil {
		return state, err
	}

	prompt := fmt.Sprintf("# Conversation History:\n%s\n\nAnalyze the conversation.", renderExchanges(exchanges))

	var report ConversationReport
	if err := llm.GenerateObject(ctx, a.model, llm.GenerateRequest{
		System: conversationAnalyzerPrompt,
		Prompt: prompt,
	}, &report); err != nil {
		return state, fmt.Errorf("%w: %v", domain.ErrAgentFailed, err)
	}

	markdown := FormatConversationReport(report)

	path, err := a.artifacts.Write(state.WorkflowID, markdown)
	if err != nil {
		return state, err
	}

	log.Info().Str("workflow_id", state.WorkflowID).Str("path", path).
		Str("previous_agent", source.String()).Msg("Conversation analysis completed")

	state.ConversationAnalyzed = markdown
	return state, nil
}

// FormatConversationReport renders the report as the markdown document
// written to the artifact directory.
func FormatConversationReport(report ConversationReport) string {
	var sections []string

	sections = append(sections, "# Conversation Analysis")

	sections = append(sections, "## Session Metadata")
	sections = append(sections, fmt.Sprintf("- **Companion Name**: %s", report.SessionMetadata.CompanionName))
	sections = append(sections, fmt.Sprintf("- **Companion Gender**: %s", report.SessionMetadata.CompanionGender))
	sections = append(sections, fmt.Sprintf("- **Interaction Type**: %s", report.SessionMetadata.InteractionType))

	sections = append(sections, "\n## Intent Analysis")
	sections = append(sections, fmt.Sprintf("- **Primary Intent**: %s", report.IntentAnalysis.PrimaryIntent))
	sections = append(sections, formatListSection("Secondary Intents", report.IntentAnalysis.SecondaryIntents))
	sections = append(sections, fmt.Sprintf("- **Intent Fulfillment**: %s", report.IntentAnalysis.IntentFulfillment))
	sections = append(sections, fmt.Sprintf("- **Evolving Needs**: %s", report.IntentAnalysis.EvolvingNeeds))

	sections = append(sections, "\n## Emotional Profile")
	sections = append(sections, fmt.Sprintf("- **Initial State**: %s", report.EmotionalProfile.InitialState))
	sections = append(sections, formatListSection("Emotional Journey", report.EmotionalProfile.EmotionalJourney))
	sections = append(sections, fmt.Sprintf("- **Final State**: %s", report.EmotionalProfile.FinalState))
	sections = append(sections, formatListSection("Emotional Needs", report.EmotionalProfile.EmotionalNeeds))
	sections = append(sections, formatListSection("Triggers", report.EmotionalProfile.Triggers))

	sections = append(sections, "\n## Relationship Dynamics")
	sections = append(sections, fmt.Sprintf("- **Interaction Style**: %s", report.RelationshipDynamics.InteractionStyle))
	sections = append(sections, formatListSection("Trust Indicators", report.RelationshipDynamics.TrustIndicators))
	sections = append(sections, fmt.Sprintf("- **Companion Performance**: %s", report.RelationshipDynamics.CompanionPerformance))
	sections = append(sections, fmt.Sprintf("- **Attachment Signals**: %s", report.RelationshipDynamics.AttachmentSignals))

	sections = append(sections, "\n## Contextual Insights")
	sections = append(sections, fmt.Sprintf("- **Session Quality**: %s", report.ContextualInsights.SessionQuality))
	sections = append(sections, fmt.Sprintf("- **User Engagement**: %s", report.ContextualInsights.UserEngagement))
	sections = append(sections, fmt.Sprintf("- **Conversation Flow**: %s", report.ContextualInsights.ConversationFlow))
	sections = append(sections, formatListSection("Preferred Topics", report.ContextualInsights.PreferredTopics))
	sections = append(sections, formatListSection("Avoided Topics", report.ContextualInsights.AvoidedTopics))

	sections = append(sections, "\n## Recommendations")
	sections = append(sections, formatListSection("Companion Improvements", report.Recommendations.CompanionImprovements))
	sections = append(sections, fmt.Sprintf("- **User Patterns**: %s", report.Recommendations.UserPatterns))
	sections = append(sections, fmt.Sprintf("- **Future Session Guidance**: %s", report.Recommendations.FutureSessionGuidance))

	return strings.Join(sections, "\n") + "\n"
}

func formatListSection(title string, items []string) string {
	lines := []string{fmt.Sprintf("- **%s**", title)}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("  - %s", item))
	}
	return strings.Join(lines, "\n")
}
