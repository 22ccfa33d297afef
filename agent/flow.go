package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/tbxark/hotelagent/internal/logging"
	"github.com/tbxark/hotelagent/types"
	"github.com/tbxark/hotelagent/validate"
)

const DefaultGraphName = "hotel_booking"

// Engine runs one dialog turn over a booking session. The compiled graph is
// read-only, so an Engine may serve any number of sessions concurrently.
type Engine struct {
	caps      Capabilities
	validator *validate.Validator
	logger    *slog.Logger
	handlers  []callbacks.Handler
	graphName string
	runnable  compose.Runnable[*types.Session, *types.Session]
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithValidator(v *validate.Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithCallbacks attaches eino callback handlers to every run.
func WithCallbacks(handlers ...callbacks.Handler) Option {
	return func(e *Engine) {
		e.handlers = append(e.handlers, handlers...)
	}
}

func WithGraphName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.graphName = name
		}
	}
}

func NewEngine(ctx context.Context, caps Capabilities, opts ...Option) (*Engine, error) {
	if err := caps.check(); err != nil {
		return nil, err
	}
	e := &Engine{
		caps:      caps,
		validator: validate.New(),
		logger:    logging.NewNop(),
		graphName: DefaultGraphName,
	}
	for _, opt := range opts {
		opt(e)
	}
	runnable, err := e.compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile dialog graph: %w", err)
	}
	e.runnable = runnable
	return e, nil
}

// NewToolBasedEngine backs every capability with chatModel. The extractors
// are told the payment methods of the configured validator.
func NewToolBasedEngine(ctx context.Context, chatModel model.ToolCallingChatModel, opts ...Option) (*Engine, error) {
	probe := &Engine{validator: validate.New()}
	for _, opt := range opts {
		opt(probe)
	}
	caps, err := ToolBasedCapabilities(chatModel, probe.validator.PaymentMethods())
	if err != nil {
		return nil, err
	}
	return NewEngine(ctx, caps, opts...)
}

// Validator returns the validator used by validate_information.
func (e *Engine) Validator() *validate.Validator {
	return e.validator
}

func (e *Engine) compile(ctx context.Context) (compose.Runnable[*types.Session, *types.Session], error) {
	g := compose.NewGraph[*types.Session, *types.Session]()
	handlers := map[Node]nodeFunc{
		NodeDetectIntent:        e.detectIntent,
		NodeCollectInformation:  e.collectInformation,
		NodeValidateInformation: e.validateInformation,
		NodeChangeInformation:   e.changeInformation,
		NodeGenerateResponse:    e.generateResponse,
		NodeSummarizeBooking:    e.summarizeBooking,
		NodeAskForCorrection:    e.askForCorrection,
	}
	for _, node := range Nodes() {
		fn, ok := handlers[node]
		if !ok {
			return nil, fmt.Errorf("no handler for node %s", node)
		}
		lambda := compose.InvokableLambda(e.wrap(node, fn))
		if err := g.AddLambdaNode(string(node), lambda, compose.WithNodeName(string(node))); err != nil {
			return nil, err
		}
	}
	if err := g.AddEdge(compose.START, string(NodeDetectIntent)); err != nil {
		return nil, err
	}
	for _, node := range Nodes() {
		if node.IsTerminal() {
			if err := g.AddEdge(string(node), compose.END); err != nil {
				return nil, err
			}
			continue
		}
		edges := outgoing(node)
		if len(edges) == 1 && edges[0].When == nil {
			if err := g.AddEdge(string(node), string(edges[0].To)); err != nil {
				return nil, err
			}
			continue
		}
		ends := make(map[string]bool, len(edges))
		for _, t := range edges {
			ends[string(t.To)] = true
		}
		from := node
		branch := compose.NewGraphBranch(func(ctx context.Context, s *types.Session) (string, error) {
			to, ok := Route(from, s)
			if !ok {
				return "", fmt.Errorf("no transition from %s", from)
			}
			return string(to), nil
		}, ends)
		if err := g.AddBranch(string(node), branch); err != nil {
			return nil, err
		}
	}
	return g.Compile(ctx, compose.WithGraphName(e.graphName))
}

// Run executes one turn and returns the updated session. The input session
// is never modified.
func (e *Engine) Run(ctx context.Context, s *types.Session) (*types.Session, error) {
	turn, err := e.RunTurn(ctx, s)
	if err != nil {
		return nil, err
	}
	return turn.Session, nil
}

// RunTurn is Run that also reports the visited nodes.
func (e *Engine) RunTurn(ctx context.Context, s *types.Session) (*Turn, error) {
	if s == nil || strings.TrimSpace(s.UserMessage) == "" {
		return nil, ErrEmptyUserMessage
	}
	work := s.Clone()
	work.Normalize()

	tr := &trace{}
	ctx = withTrace(ctx, tr)
	var opts []compose.Option
	if len(e.handlers) > 0 {
		opts = append(opts, compose.WithCallbacks(e.handlers...))
	}
	e.logger.Debug("Running turn", "graph", e.graphName, "message", work.UserMessage)
	out, err := e.runnable.Invoke(ctx, work, opts...)
	if err != nil {
		if tr.err != nil {
			e.logger.Error("Turn failed", "node", tr.err.Node, "path", tr.path, "error", tr.err.Err)
			return nil, tr.err
		}
		e.logger.Error("Turn failed", "path", tr.path, "error", err)
		return nil, fmt.Errorf("failed to run dialog graph: %w", err)
	}
	if out == nil {
		return nil, errors.New("dialog graph returned no session")
	}
	e.logger.Debug("Turn finished", "path", tr.path, "intent", out.Intent, "valid_info", out.ValidInfo)
	return &Turn{Session: out, Path: tr.path}, nil
}

type trace struct {
	path []Node
	err  *NodeError
}

type traceKey struct{}

func withTrace(ctx context.Context, tr *trace) context.Context {
	return context.WithValue(ctx, traceKey{}, tr)
}

func traceFromContext(ctx context.Context) *trace {
	tr, _ := ctx.Value(traceKey{}).(*trace)
	return tr
}
