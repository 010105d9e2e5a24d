//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neighborly-labs/neighborly/internal/api/handlers"
	"github.com/neighborly-labs/neighborly/internal/openai"
	"github.com/neighborly-labs/neighborly/internal/repository"
	"github.com/neighborly-labs/neighborly/internal/server"
	"github.com/neighborly-labs/neighborly/internal/service"
	"github.com/neighborly-labs/neighborly/internal/testutil"
)

// stubEmbeddingDims keeps the stub model's vectors small; the real
// dimensionality is irrelevant to the retrieval pipeline being exercised.
const stubEmbeddingDims = 8

// Canned replies served by the stub model, routed on prompt content.
const (
	stubAnswer    = "The block party is happening on Saturday at the park."
	stubFollowUp1 = "What else is happening this weekend?"
	stubFollowUp2 = "How do I volunteer for a help request?"
	stubSummary   = "Neighbors are organizing a block party at the park."
	stubInsights  = "Summary: Commenters are excited about the event.\nSentiment: Positive"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	OpenAIStub   *httptest.Server
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a database container,
// a stub OpenAI endpoint, and the HTTP server wired against both.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	stub := newStubOpenAI(t)

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, stub.URL+"/v1", port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		OpenAIStub:   stub,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.OpenAIStub != nil {
		e.OpenAIStub.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// newStubOpenAI starts an httptest server speaking just enough of the OpenAI
// API for the assistant pipeline: deterministic embeddings derived from the
// input text, and canned completions routed on prompt markers.
func newStubOpenAI(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type embeddingData struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]embeddingData, len(req.Input))
		for i, text := range req.Input {
			data[i] = embeddingData{
				Object:    "embedding",
				Embedding: stubEmbedding(text),
				Index:     i,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-ada-002",
		})
	})

	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Messages) == 0 {
			http.Error(w, "no messages", http.StatusBadRequest)
			return
		}

		prompt := req.Messages[len(req.Messages)-1].Content
		var reply string
		switch {
		case strings.Contains(prompt, "suggest 2 follow-up questions"):
			reply = stubFollowUp1 + "\n" + stubFollowUp2
		case strings.Contains(prompt, "Summarize this community post"):
			reply = stubSummary
		case strings.Contains(prompt, "Respond in this format"):
			reply = stubInsights
		default:
			reply = stubAnswer
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-stub",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index": 0,
					"message": map[string]string{
						"role":    "assistant",
						"content": reply,
					},
					"finish_reason": "stop",
				},
			},
		})
	})

	return httptest.NewServer(mux)
}

// stubEmbedding maps text to a fixed-dimension vector derived from its hash,
// so the same text always embeds identically and distinct texts diverge.
func stubEmbedding(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, stubEmbeddingDims)
	for i := 0; i < stubEmbeddingDims; i++ {
		vec[i] = float32(hash[i])/255 + 0.01
	}
	return vec
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, openaiBaseURL string, port int) (string, func()) {
	postRepo := repository.NewPostRepository(pool)
	helpRequestRepo := repository.NewHelpRequestRepository(pool)
	chatRepo := repository.NewChatMemoryRepository(pool)

	openaiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              "e2e-test-key",
		BaseURL:             openaiBaseURL,
		EmbeddingDimensions: stubEmbeddingDims,
	})

	corpusSvc := service.NewCorpusService(postRepo, helpRequestRepo, openaiClient, 3)
	if err := corpusSvc.Rebuild(context.Background()); err != nil {
		t.Fatalf("failed to build initial corpus snapshot: %v", err)
	}

	assistantSvc := service.NewAssistantService(corpusSvc, chatRepo, openaiClient)
	insightsSvc := service.NewInsightsService(postRepo, openaiClient)
	uuidGen := &service.DefaultUUIDGenerator{}

	cfg := server.RouterConfig{
		AssistantHandler:   handlers.NewAssistantHandler(assistantSvc, chatRepo, corpusSvc),
		PostHandler:        handlers.NewPostHandler(postRepo, insightsSvc, insightsSvc, uuidGen),
		HelpRequestHandler: handlers.NewHelpRequestHandler(helpRequestRepo, uuidGen),
	}

	router := server.NewRouter(cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
