package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tradepersona/internal/config"
	"tradepersona/internal/pkg/circuit"
)

type mockProvider struct{ mock.Mock }

func (m *mockProvider) ID() string { return "mock" }

func (m *mockProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func completionHandler(t *testing.T, reply string, hits *int32, failFirst int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(hits, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		if n <= failFirst {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + mustJSON(reply) + `}}]}`))
	}
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenAIChatClientComplete(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(completionHandler(t, "retrieval", &hits, 0))
	defer srv.Close()

	c := NewOpenAIChatClient(srv.URL+"/v1/chat/completions", "secret-key", "test-model", 5*time.Second, 0, map[string]string{"X-Extra": "yes"})
	out, err := c.Complete(context.Background(), "sys", "user", 0)
	require.NoError(t, err)
	assert.Equal(t, "retrieval", out)
	assert.EqualValues(t, 1, hits)
}

func TestOpenAIChatClientRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(completionHandler(t, "ok", &hits, 1))
	defer srv.Close()

	c := NewOpenAIChatClient(srv.URL+"/v1", "secret-key", "test-model", 5*time.Second, 2, map[string]string{"X-Extra": "yes"})
	out, err := c.Complete(context.Background(), "sys", "user", 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 2, hits)
}

func TestOpenAIChatClientClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIChatClient(srv.URL, "k", "m", time.Second, 3, nil)
	_, err := c.Complete(context.Background(), "", "user", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401: bad key")
	assert.EqualValues(t, 1, hits)
}

func TestDefaultConfigCallsUpstreamOnce(t *testing.T) {
	for _, name := range []string{"TRADEPERSONA_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "DEEPSEEK_API_KEY"} {
		t.Setenv(name, "")
	}
	t.Chdir(t.TempDir())
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.AI.Provider = config.ProviderOpenAI
	cfg.AI.APIURL = srv.URL
	cfg.AI.APIKey = "k"

	p, err := Build(context.Background(), cfg.AI)
	require.NoError(t, err)
	_, err = p.Call(context.Background(), ChatPayload{User: "how many trades?", Purpose: "classify"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestMaskedHeaders(t *testing.T) {
	c := NewOpenAIChatClient("", "sk-1234567890", "m", 0, 0, map[string]string{"X-Api-Key": "abcdefgh", "X-Trace": "plain"})
	h := c.maskedHeaders()
	assert.Equal(t, "Bearer ****7890", h["Authorization"])
	assert.Equal(t, "****efgh", h["X-Api-Key"])
	assert.Equal(t, "plain", h["X-Trace"])
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", c.endpoint())
}

func TestBreakerProviderRejectsWhenOpen(t *testing.T) {
	inner := &mockProvider{}
	inner.On("Call", mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()
	p := NewBreakerProvider(inner, circuit.New("mock", 1, time.Hour))

	_, err := p.Call(context.Background(), ChatPayload{User: "q"})
	require.Error(t, err)
	_, err = p.Call(context.Background(), ChatPayload{User: "q"})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	inner.AssertNumberOfCalls(t, "Call", 1)
}

func TestBreakerProviderPassesThrough(t *testing.T) {
	inner := &mockProvider{}
	inner.On("Call", mock.Anything, ChatPayload{User: "q"}).Return("answer", nil)
	p := NewBreakerProvider(inner, circuit.New("mock", 1, time.Hour))

	out, err := p.Call(context.Background(), ChatPayload{User: "q"})
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, "mock", p.ID())
}

func TestLoggingProviderForwards(t *testing.T) {
	inner := &mockProvider{}
	inner.On("Call", mock.Anything, mock.Anything).Return("hi", nil)
	out, err := NewLoggingProvider(inner).Call(context.Background(), ChatPayload{System: "s", User: "u", Purpose: "compose", TraceID: "t-1"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	inner.AssertExpectations(t)
}

type fakeChatModel struct {
	reply *schema.Message
	err   error
	got   []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoProviderCall(t *testing.T) {
	m := &fakeChatModel{reply: schema.AssistantMessage("aggregation", nil)}
	p := NewEinoProvider("eino:test", m)
	out, err := p.Call(context.Background(), ChatPayload{System: "sys", User: "how many?", MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "aggregation", out)
	require.Len(t, m.got, 2)
	assert.Equal(t, schema.System, m.got[0].Role)
	assert.Equal(t, "how many?", m.got[1].Content)

	_, err = NewEinoProvider("eino:nil", &fakeChatModel{}).Call(context.Background(), ChatPayload{User: "x"})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestBuildRequiresAPIKey(t *testing.T) {
	_, err := Build(context.Background(), config.AIConfig{Provider: config.ProviderGemini, APIURL: "http://x", Model: "m"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestBuildOpenAICompatible(t *testing.T) {
	p, err := Build(context.Background(), config.AIConfig{
		Provider: config.ProviderGemini, APIURL: "http://localhost:1", APIKey: "k", Model: "gemini-1.5-flash",
		BreakerThreshold: 3, BreakerCooldownSeconds: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini:gemini-1.5-flash", p.ID())
	_, isBreaker := p.(*BreakerProvider)
	assert.True(t, isBreaker)

	_, err = Build(context.Background(), config.AIConfig{Provider: "nope", APIKey: "k"})
	assert.Error(t, err)
}
