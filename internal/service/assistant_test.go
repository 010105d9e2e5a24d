package service

import (
	"context"
	"errors"
	"testing"

	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContextRetriever is a mock implementation of ContextRetriever
type MockContextRetriever struct {
	mock.Mock
}

func (m *MockContextRetriever) RetrieveContext(ctx context.Context, query string) ([]string, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockChatMemory is a mock implementation of ChatMemory
type MockChatMemory struct {
	mock.Mock
}

func (m *MockChatMemory) Append(ctx context.Context, sessionID, question, answer string) error {
	args := m.Called(ctx, sessionID, question, answer)
	return args.Error(0)
}

func (m *MockChatMemory) History(ctx context.Context, sessionID string) ([]*domain.ChatTurn, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatTurn), args.Error(1)
}

// MockGenerationClient is a mock implementation of GenerationClient that
// records every prompt it receives.
type MockGenerationClient struct {
	mock.Mock
	prompts []string
}

func (m *MockGenerationClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestAssistantServiceAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("answers, suggests follow-ups, and persists the turn", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		retriever.On("RetrieveContext", mock.Anything, "When is the block party?").
			Return([]string{"context one", "context two"}, nil)
		memory.On("History", mock.Anything, "session-1").Return([]*domain.ChatTurn{}, nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("This Saturday at noon.", nil).Once()
		generator.On("Complete", mock.Anything, mock.Anything).Return("Where is it held?\nIs parking available?", nil).Once()
		memory.On("Append", mock.Anything, "session-1", "When is the block party?", "This Saturday at noon.").Return(nil)

		svc := NewAssistantService(retriever, memory, generator)

		result, err := svc.Ask(ctx, "When is the block party?", "session-1")

		require.NoError(t, err)
		assert.Equal(t, "When is the block party?", result.Question)
		assert.Equal(t, "session-1", result.SessionID)
		assert.Equal(t, "This Saturday at noon.", result.Answer)
		assert.Equal(t, []string{"Where is it held?", "Is parking available?"}, result.FollowUp)
		memory.AssertExpectations(t)
	})

	t.Run("answer prompt carries retrieved context and the question", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		retriever.On("RetrieveContext", mock.Anything, mock.Anything).
			Return([]string{"the park opens at 8am"}, nil)
		memory.On("History", mock.Anything, mock.Anything).Return([]*domain.ChatTurn{}, nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)
		memory.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewAssistantService(retriever, memory, generator)

		_, err := svc.Ask(ctx, "When does the park open?", "session-1")

		require.NoError(t, err)
		require.Len(t, generator.prompts, 2)
		answerPrompt := generator.prompts[0]
		assert.Contains(t, answerPrompt, "the park opens at 8am")
		assert.Contains(t, answerPrompt, "Current question: When does the park open?")
		assert.Contains(t, answerPrompt, "Answer with no formatting")
	})

	t.Run("prior turns appear in both prompts as User and Bot lines", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		history := []*domain.ChatTurn{
			{SessionID: "session-1", Question: "When is the block party?", Answer: "This Saturday at noon."},
		}

		retriever.On("RetrieveContext", mock.Anything, mock.Anything).Return([]string{}, nil)
		memory.On("History", mock.Anything, "session-1").Return(history, nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("At the park on Elm St.", nil)
		memory.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewAssistantService(retriever, memory, generator)

		_, err := svc.Ask(ctx, "Where exactly?", "session-1")

		require.NoError(t, err)
		require.Len(t, generator.prompts, 2)
		for _, prompt := range generator.prompts {
			assert.Contains(t, prompt, "User: When is the block party?\nBot: This Saturday at noon.")
		}
	})

	t.Run("blank follow-up lines are dropped", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		retriever.On("RetrieveContext", mock.Anything, mock.Anything).Return([]string{}, nil)
		memory.On("History", mock.Anything, mock.Anything).Return([]*domain.ChatTurn{}, nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("answer", nil).Once()
		generator.On("Complete", mock.Anything, mock.Anything).Return("\nFirst?\n\n  \nSecond?\n", nil).Once()
		memory.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewAssistantService(retriever, memory, generator)

		result, err := svc.Ask(ctx, "question", "session-1")

		require.NoError(t, err)
		assert.Equal(t, []string{"First?", "Second?"}, result.FollowUp)
	})

	t.Run("rejects blank question", func(t *testing.T) {
		svc := NewAssistantService(new(MockContextRetriever), new(MockChatMemory), new(MockGenerationClient))

		_, err := svc.Ask(ctx, "   ", "session-1")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})

	t.Run("rejects missing session ID", func(t *testing.T) {
		svc := NewAssistantService(new(MockContextRetriever), new(MockChatMemory), new(MockGenerationClient))

		_, err := svc.Ask(ctx, "question", "")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})

	t.Run("history read failure fails the call", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		retriever.On("RetrieveContext", mock.Anything, mock.Anything).Return([]string{}, nil)
		memory.On("History", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		svc := NewAssistantService(retriever, memory, generator)

		_, err := svc.Ask(ctx, "question", "session-1")

		assert.Error(t, err)
		generator.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("retrieval failure fails the call", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		retriever.On("RetrieveContext", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

		svc := NewAssistantService(retriever, memory, generator)

		_, err := svc.Ask(ctx, "question", "session-1")

		assert.Error(t, err)
	})

	t.Run("generation failure fails the call", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		retriever.On("RetrieveContext", mock.Anything, mock.Anything).Return([]string{}, nil)
		memory.On("History", mock.Anything, mock.Anything).Return([]*domain.ChatTurn{}, nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("model overloaded"))

		svc := NewAssistantService(retriever, memory, generator)

		_, err := svc.Ask(ctx, "question", "session-1")

		assert.Error(t, err)
		memory.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persist failure still returns the answer", func(t *testing.T) {
		retriever := new(MockContextRetriever)
		memory := new(MockChatMemory)
		generator := new(MockGenerationClient)

		retriever.On("RetrieveContext", mock.Anything, mock.Anything).Return([]string{}, nil)
		memory.On("History", mock.Anything, mock.Anything).Return([]*domain.ChatTurn{}, nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("the answer", nil).Once()
		generator.On("Complete", mock.Anything, mock.Anything).Return("follow up?", nil).Once()
		memory.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

		svc := NewAssistantService(retriever, memory, generator)

		result, err := svc.Ask(ctx, "question", "session-1")

		require.NoError(t, err)
		assert.Equal(t, "the answer", result.Answer)
	})
}
