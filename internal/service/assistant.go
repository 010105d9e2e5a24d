package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/neighborly-labs/neighborly/internal/telemetry"
)

// GenerationClient defines the interface for text generation
type GenerationClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ContextRetriever defines the interface for grounding-context retrieval
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, query string) ([]string, error)
}

// ChatMemory defines the interface for durable per-session chat history
type ChatMemory interface {
	Append(ctx context.Context, sessionID, question, answer string) error
	History(ctx context.Context, sessionID string) ([]*domain.ChatTurn, error)
}

// AskResult is the outcome of one completed orchestration cycle
type AskResult struct {
	Question  string
	SessionID string
	Answer    string
	FollowUp  []string
}

// askState names a step of the orchestration state machine.
type askState string

const (
	stateStart    askState = "start"
	stateRetrieve askState = "retrieve_and_recall"
	stateAnswer   askState = "generate_answer"
	stateFollowUp askState = "generate_followup"
	statePersist  askState = "persist"
	stateDone     askState = "done"
)

// conversation is the transient per-request state the machine advances.
// Only the question/answer pair outlives the request, as a ChatTurn.
type conversation struct {
	question  string
	sessionID string
	context   []string
	history   []*domain.ChatTurn
	answer    string
	followUp  []string
}

type askTransition struct {
	state askState
	next  askState
	run   func(ctx context.Context, conv *conversation) error
}

// AssistantService orchestrates one question through retrieval, generation,
// and persistence. It is stateless between calls; everything per-request
// lives in the conversation value, so concurrent Asks never interfere.
type AssistantService struct {
	retriever ContextRetriever
	memory    ChatMemory
	generator GenerationClient

	// modelTimeout bounds each generation call; zero means no bound.
	modelTimeout time.Duration
}

// NewAssistantService creates a new AssistantService instance
func NewAssistantService(retriever ContextRetriever, memory ChatMemory, generator GenerationClient) *AssistantService {
	return &AssistantService{
		retriever: retriever,
		memory:    memory,
		generator: generator,
	}
}

// NewAssistantServiceWithTimeout creates an AssistantService whose model
// calls are individually bounded by timeout.
func NewAssistantServiceWithTimeout(retriever ContextRetriever, memory ChatMemory, generator GenerationClient, timeout time.Duration) *AssistantService {
	svc := NewAssistantService(retriever, memory, generator)
	svc.modelTimeout = timeout
	return svc
}

// Ask runs the full orchestration cycle for one question. The state machine
// is a single linear pass; there is no branching and no retry.
func (s *AssistantService) Ask(ctx context.Context, question, sessionID string) (*AskResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AssistantService.Ask", telemetry.SpanAttributes{
		SessionID: sessionID,
		Operation: "ask",
	})
	defer span.End()

	if strings.TrimSpace(question) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "question is required")
	}
	if sessionID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "session id is required")
	}

	conv := &conversation{
		question:  question,
		sessionID: sessionID,
	}

	for state := stateStart; state != stateDone; {
		transition, ok := s.transitions()[state]
		if !ok {
			return nil, fmt.Errorf("no transition from state %q", state)
		}
		if transition.run != nil {
			if err := transition.run(ctx, conv); err != nil {
				span.SetError(err)
				return nil, fmt.Errorf("%s: %w", state, err)
			}
		}
		state = transition.next
	}

	return &AskResult{
		Question:  conv.question,
		SessionID: conv.sessionID,
		Answer:    conv.answer,
		FollowUp:  conv.followUp,
	}, nil
}

// transitions returns the linear transition table. Represented explicitly so
// per-step timeouts or retries can be attached without restructuring Ask.
func (s *AssistantService) transitions() map[askState]askTransition {
	return map[askState]askTransition{
		stateStart:    {state: stateStart, next: stateRetrieve},
		stateRetrieve: {state: stateRetrieve, next: stateAnswer, run: s.retrieveAndRecall},
		stateAnswer:   {state: stateAnswer, next: stateFollowUp, run: s.generateAnswer},
		stateFollowUp: {state: stateFollowUp, next: statePersist, run: s.generateFollowUp},
		statePersist:  {state: statePersist, next: stateDone, run: s.persist},
	}
}

// retrieveAndRecall gathers grounding context and prior session turns. The
// two lookups are independent; a history read failure fails the whole call
// rather than silently answering with a wrong conversation.
func (s *AssistantService) retrieveAndRecall(ctx context.Context, conv *conversation) error {
	context, err := s.retriever.RetrieveContext(ctx, conv.question)
	if err != nil {
		return fmt.Errorf("failed to retrieve context: %w", err)
	}
	conv.context = context

	history, err := s.memory.History(ctx, conv.sessionID)
	if err != nil {
		return fmt.Errorf("failed to read chat history: %w", err)
	}
	conv.history = history

	return nil
}

func (s *AssistantService) generateAnswer(ctx context.Context, conv *conversation) error {
	answer, err := s.complete(ctx, buildAnswerPrompt(conv.context, conv.history, conv.question))
	if err != nil {
		return fmt.Errorf("failed to generate answer: %w", err)
	}
	conv.answer = strings.TrimSpace(answer)
	return nil
}

func (s *AssistantService) generateFollowUp(ctx context.Context, conv *conversation) error {
	reply, err := s.complete(ctx, buildFollowUpPrompt(conv.history, conv.question, conv.answer))
	if err != nil {
		return fmt.Errorf("failed to generate follow-up: %w", err)
	}
	conv.followUp = splitFollowUpLines(reply)
	return nil
}

// persist records the completed turn. Follow-up suggestions are never
// persisted; they are regenerated fresh on every turn. A write failure is
// reported but does not discard the already-produced answer.
func (s *AssistantService) persist(ctx context.Context, conv *conversation) error {
	if err := s.memory.Append(ctx, conv.sessionID, conv.question, conv.answer); err != nil {
		log.Printf("failed to persist chat turn for session %s: %v", conv.sessionID, err)
		telemetry.CaptureError(ctx, err)
	}
	return nil
}

func (s *AssistantService) complete(ctx context.Context, prompt string) (string, error) {
	if s.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.modelTimeout)
		defer cancel()
	}
	return s.generator.Complete(ctx, prompt)
}

func buildAnswerPrompt(context []string, history []*domain.ChatTurn, question string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant that has access to all help requests and community posts in the community website.\n")
	sb.WriteString("You will not reiterate anything word-for-word, but instead create your own answers.\n")
	sb.WriteString("Context: ")
	sb.WriteString(strings.Join(context, "\n"))
	sb.WriteString("\nConversation so far: ")
	sb.WriteString(renderHistory(history))
	sb.WriteString("\nCurrent question: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer with no formatting")
	return sb.String()
}

func buildFollowUpPrompt(history []*domain.ChatTurn, question, answer string) string {
	var sb strings.Builder
	sb.WriteString("Based on the following conversation and your response, suggest 2 follow-up questions a user might ask next:\n")
	sb.WriteString("Conversation: ")
	sb.WriteString(renderHistory(history))
	sb.WriteString("\nCurrent question: ")
	sb.WriteString(question)
	sb.WriteString("\nYour answer: ")
	sb.WriteString(answer)
	sb.WriteString("\nOnly return the follow-up questions separated by new lines:")
	return sb.String()
}

// renderHistory renders prior turns as alternating User:/Bot: lines.
func renderHistory(history []*domain.ChatTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nBot: %s", turn.Question, turn.Answer))
	}
	return strings.Join(lines, "\n")
}

// splitFollowUpLines parses the raw line-delimited model reply into
// individual follow-up questions, dropping blank lines.
func splitFollowUpLines(reply string) []string {
	var questions []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}
