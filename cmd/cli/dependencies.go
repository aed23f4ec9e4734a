package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/agents"
	"github.com/havenhq/haven/internal/config"
	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/llm"
	"github.com/havenhq/haven/internal/llm/anthropic"
	"github.com/havenhq/haven/internal/llm/gemini"
	"github.com/havenhq/haven/internal/llm/openai"
	"github.com/havenhq/haven/internal/scheduler"
	"github.com/havenhq/haven/internal/storage/history"
	"github.com/havenhq/haven/internal/storage/kvstore"
	redisstore "github.com/havenhq/haven/internal/storage/kvstore/redis"
	"github.com/havenhq/haven/internal/storage/sessions"
	"github.com/havenhq/haven/internal/workflow"
	"github.com/havenhq/haven/internal/workflow/mongodb"
)

// ServiceDependencies contains all dependencies needed by the CLI commands
type ServiceDependencies struct {
	Config    *config.Config
	Store     kvstore.Store
	Registry  domain.SessionRegistry
	History   domain.HistoryStore
	Model     llm.Model
	Artifacts *agents.ArtifactWriter
	Summaries *agents.ArtifactWriter
	Trigger   domain.TriggerService
	Scheduler *scheduler.Scheduler
	Manager   *scheduler.ServiceManager
}

// BuildServiceDependencies creates and wires up all service dependencies
func BuildServiceDependencies(ctx context.Context) (*ServiceDependencies, error) {
	log.Info().Msg("Building service dependencies")

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	store, err := redisstore.New(redisstore.StoreDeps{
		Context: ctx,
		URL:     cfg.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	messageTTL := time.Duration(cfg.MessageExpirySeconds) * time.Second

	registry := sessions.NewRegistry(sessions.RegistryDependencies{
		Store: store,
		TTL:   messageTTL,
	})

	historyStore := history.NewStore(history.StoreDependencies{
		Store:    store,
		Registry: registry,
		TTL:      messageTTL,
	})

	model, err := newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	artifacts := agents.NewArtifactWriter(cfg.AnalysisOutputDir)
	summaries := agents.NewArtifactWriter(cfg.SummaryOutputDir)

	// The scheduler's graph runs stateless. Checkpoints only matter for
	// interactive threads that resume across invocations.
	invokerFactory := func() (domain.WorkflowInvoker, error) {
		return newWorkflowGraph(model, historyStore, artifacts, summaries, nil)
	}

	trigger := scheduler.NewTriggerService(scheduler.TriggerServiceDependencies{
		InvokerFactory: invokerFactory,
		InvokeTimeout:  time.Duration(cfg.InvokeTimeoutSeconds) * time.Second,
	})

	sched := scheduler.NewScheduler(scheduler.SchedulerDependencies{
		Registry: registry,
		Trigger:  trigger,
		Interval: time.Duration(cfg.SchedulerIntervalSeconds) * time.Second,
		Offset:   time.Duration(cfg.TriggerOffsetMinutes) * time.Minute,
	})

	manager := scheduler.NewServiceManager(scheduler.ServiceManagerDependencies{
		Scheduler: sched,
	})

	return &ServiceDependencies{
		Config:    cfg,
		Store:     store,
		Registry:  registry,
		History:   historyStore,
		Model:     model,
		Artifacts: artifacts,
		Summaries: summaries,
		Trigger:   trigger,
		Scheduler: sched,
		Manager:   manager,
	}, nil
}

// BuildChatInvoker builds a checkpointed workflow graph for interactive
// threads. Without MONGO_URL the chat still works, it just cannot resume
// a thread after the process exits.
func BuildChatInvoker(ctx context.Context, deps *ServiceDependencies) (domain.WorkflowInvoker, error) {
	var checkpoints workflow.CheckpointStore

	if deps.Config.MongoURL != "" {
		mongoStore, err := mongodb.Connect(ctx, deps.Config.MongoURL, deps.Config.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}

		checkpoints = mongoStore
	} else {
		log.Warn().Msg("MONGO_URL not set, chat threads will not persist across restarts")
	}

	return newWorkflowGraph(deps.Model, deps.History, deps.Artifacts, deps.Summaries, checkpoints)
}

func newWorkflowGraph(model llm.Model, historyStore domain.HistoryStore, artifacts, summaries *agents.ArtifactWriter, checkpoints workflow.CheckpointStore) (*workflow.Graph, error) {
	return workflow.NewGraph(workflow.GraphDependencies{
		General: agents.NewGeneralAgent(agents.GeneralAgentDependencies{
			Model:   model,
			History: historyStore,
		}),
		Companion: agents.NewCompanionAgent(agents.CompanionAgentDependencies{
			Model:   model,
			History: historyStore,
		}),
		ConversationAnalyzer: agents.NewConversationAnalyzerAgent(agents.ConversationAnalyzerDependencies{
			Model:     model,
			History:   historyStore,
			Artifacts: artifacts,
		}),
		ConversationSummarizer: agents.NewConversationSummarizerAgent(agents.ConversationSummarizerDependencies{
			Model:     model,
			History:   historyStore,
			Artifacts: summaries,
		}),
		JournalAnalyzer: agents.NewJournalAnalyzerAgent(agents.JournalAnalyzerDependencies{
			Model:     model,
			Artifacts: artifacts,
		}),
		Checkpoints: checkpoints,
	})
}

func newModel(ctx context.Context, cfg *config.Config) (llm.Model, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		return anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case "gemini":
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
