package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/havenhq/haven/internal/domain"
)

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with an agent interactively",
		Long: `Start an interactive conversation thread. Each turn runs the workflow
graph, persists history with sliding expiry, and registers the session
for analysis once it nears expiry. Type 'exit' to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			agentName, _ := cmd.Flags().GetString("agent")
			workflowID, _ := cmd.Flags().GetString("workflow")
			userID, _ := cmd.Flags().GetString("user")

			return runChat(agentName, workflowID, userID)
		},
	}

	cmd.Flags().String("agent", string(domain.AgentGeneral), "Agent to talk to (general_agent, companion_agent, journal_analyzer_agent, summarize_conversation)")
	cmd.Flags().String("workflow", "", "Resume an existing conversation thread")
	cmd.Flags().String("user", "", "User ID to attribute the conversation to")

	return cmd
}

func runChat(agentName, workflowID, userID string) error {
	ctx := context.Background()

	agent, err := domain.ParseAgentKind(agentName)
	if err != nil {
		return err
	}

	deps, err := BuildServiceDependencies(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service dependencies")
	}

	invoker, err := BuildChatInvoker(ctx, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build workflow invoker")
	}

	if workflowID == "" {
		workflowID = uuid.NewString()
	}
	if userID == "" {
		userID = uuid.NewString()
	}

	fmt.Printf("Conversation thread %s (agent %s). Type 'exit' to quit.\n", workflowID, agent)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		state := domain.WorkflowState{
			UserID:     userID,
			WorkflowID: workflowID,
			Agent:      agent,
			UserInput: &domain.UserInput{
				Response:        line,
				CompanionName:   deps.Config.CompanionName,
				CompanionGender: deps.Config.CompanionGender,
			},
		}

		result, err := invoker.Invoke(ctx, state, domain.InvokeConfig{ThreadID: workflowID})
		if err != nil {
			log.Error().Err(err).Msg("Workflow invocation failed")
			continue
		}

		switch {
		case result.AgentResponse != "":
			fmt.Println(result.AgentResponse)
		case result.JournalAnalysis != "":
			fmt.Println(result.JournalAnalysis)
		case result.ConversationSummary != "":
			fmt.Println(result.ConversationSummary)
		default:
			fmt.Println("(no response)")
		}
	}

	return scanner.Err()
}
