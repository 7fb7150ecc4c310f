package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/malaysia-ai/concierge-server/internal/concierge/graph/conversations"
	"github.com/malaysia-ai/concierge-server/internal/concierge/graph/nodes"
	"github.com/malaysia-ai/concierge-server/internal/concierge/graph/observers"
	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public ChatInput.
// Callers may pass per-request compose options (e.g. generation overrides).
type Runner interface {
	Invoke(ctx context.Context, in model.ChatInput, opts ...compose.Option) (*model.ChatResult, error)
}

// Config holds everything needed to compose the full concierge graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs ChatModels and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	ResponseModel    model.ResponseModelConfig
	Prompt           model.PersonaPromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	PromptConfig    model.PersonaPromptConfig
}

// GraphBuilder handles the construction of the concierge conversation graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.ChatInput, *model.ChatResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.ChatInput, *model.ChatResult]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.ChatInput, opts ...compose.Option) (*model.ChatResult, error) {
	allOpts := append([]compose.Option{compose.WithCallbacks(observers.NewAllCallbacks())}, opts...)
	out, err := r.runnable.Invoke(ctx, in, allOpts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Concierge bundles the compiled graph runner with the chat models so the
// HTTP layer can reuse the response model for streaming and the GenAI client
// for vision calls.
type Concierge struct {
	Runner          Runner
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
}

// BuildResponseGraph composes ChatModels, MessagesManager, builds the graph,
// and returns the assembled Concierge.
func BuildResponseGraph(ctx context.Context, cfg Config) (*Concierge, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}

	// Create chat models
	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		RespConfig: &cfg.ResponseModel,
	})
	if err != nil {
		return nil, err
	}

	// Create messages manager
	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	// Build runnable graph
	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		PromptConfig:    cfg.Prompt,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Response graph built successfully")
	return &Concierge{
		Runner:          &graphRunner{runnable: runnable},
		ChatModels:      cms,
		MessagesManager: mm,
	}, nil
}

// BuildGraph constructs and returns the compiled concierge graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.ChatInput, *model.ChatResult], error) {
	// Basic config validation
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.ChatInput, *model.ChatResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(b.config.MessagesManager, b.config.PromptConfig),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
		nodes.NewResponseChatModelNode(b.config.ChatModels.Response),
		compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(b.config.ChatModels.ResponseModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeDirectiveParser,
		nodes.NewDirectiveParserNode(b.config.ChatModels.ResponseModelName),
		compose.WithStatePostHandler(nodes.NewDirectiveParserPostHandler(b.config.MessagesManager)),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeResponseChatModel},
		{nodes.NodeResponseChatModel, nodes.NodeDirectiveParser},
		{nodes.NodeDirectiveParser, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.ChatInput, *model.ChatResult], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
