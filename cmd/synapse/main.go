// Package main is the entry point for the Synapse CLI. Synapse is a
// staged conversational pipeline: messages are routed to an intent,
// tools run in parallel, and a context frame drives response
// generation.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/normanking/synapse/internal/acontext"
	"github.com/normanking/synapse/internal/bus"
	"github.com/normanking/synapse/internal/config"
	"github.com/normanking/synapse/internal/knowledge"
	"github.com/normanking/synapse/internal/logging"
	"github.com/normanking/synapse/internal/memory"
	"github.com/normanking/synapse/internal/orchestrator"
	"github.com/normanking/synapse/internal/response"
	"github.com/normanking/synapse/internal/router"
	"github.com/normanking/synapse/internal/tools"
	"github.com/normanking/synapse/internal/tui"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "synapse",
		Short: "Synapse - staged conversational pipeline with pluggable tools",
		Long: `Synapse routes each message to an intent, fans selected tools out in
parallel (memory recall, knowledge search, clarification analysis),
assembles a context frame and generates a reply.

Start interactive chat:  synapse
One-shot question:       synapse ask "How do I implement caching?"
Configuration:           synapse config show`,
		RunE: runChat,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.synapse/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Synapse v%s\n", version)
		},
	})

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, installs logging and wires the pipeline.
func setup() (*orchestrator.Orchestrator, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logCloser, err := logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
		Pretty: cfg.Logging.Pretty,
	})
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kstore, err := knowledge.Open(ctx, cfg.Knowledge.DSN, cfg.Knowledge.Seed)
	if err != nil {
		logCloser.Close()
		return nil, nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}

	store := memory.NewStore(uuid.NewString(),
		memory.WithMaxSessionMessages(cfg.Session.HistoryMax))

	registry := tools.NewRegistry(tools.WithToolTimeout(cfg.Pipeline.ToolTimeout))
	for _, tool := range []tools.Tool{
		tools.NewMemoryRecallTool(store, tools.WithRecallLimit(cfg.Pipeline.MaxSearchResults)),
		tools.NewKnowledgeSearchTool(kstore, tools.WithKnowledgeLimit(cfg.Pipeline.MaxSearchResults)),
		tools.NewClarificationCheckTool(),
	} {
		if err := registry.Register(tool); err != nil {
			kstore.Close()
			logCloser.Close()
			return nil, nil, err
		}
	}

	builder := acontext.NewBuilder(registry,
		acontext.WithHistoryLimit(cfg.Pipeline.HistoryLimit),
		acontext.WithContentTruncate(cfg.Pipeline.ContentTruncate))

	events := bus.New()
	if verbose {
		events.SubscribeAll(func(e bus.Event) {
			log.Debug().
				Str("event", string(e.Type)).
				Str("session_id", e.SessionID).
				Fields(e.Payload).
				Msg("pipeline event")
		})
	}

	orch := orchestrator.New(router.New(), registry, builder,
		response.NewRuleBased(registry), store,
		orchestrator.WithBus(events))

	cleanup := func() {
		kstore.Close()
		logCloser.Close()
	}
	return orch, cleanup, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	lipgloss.SetColorProfile(termenv.ColorProfile())

	orch, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(orch)
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a one-shot question",
		Long: `Run a single message through the pipeline and print the reply.

Examples:
  synapse ask "How do I implement caching in TypeScript?"
  synapse ask "What did we discuss about indexes?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			orch, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			result := orch.ProcessMessage(cmd.Context(), question)
			if !result.Success {
				return fmt.Errorf("pipeline failed: %s", result.Error)
			}

			fmt.Println(result.Response)
			if verbose && result.Decision != nil {
				fmt.Fprintf(os.Stderr, "\nintent=%s confidence=%.2f tools=%d time=%s\n",
					result.Decision.Intent, result.Decision.Confidence,
					len(result.ToolResults), result.TotalTime.Round(0))
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	})

	return cmd
}
