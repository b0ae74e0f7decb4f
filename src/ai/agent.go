package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/ashvale/ember/src/sys"
)

var (
	ErrDisabled    = errors.New("ai relay not configured")
	ErrRateLimited = errors.New("channel is rate limited")
)

// Agent relays chat to a single configured LLM provider, keeping a short
// per-channel history window.
type Agent struct {
	model        llms.Model
	provider     string
	modelName    string
	systemPrompt string
	temperature  float64
	maxTokens    int
	historySize  int

	cache *ResponseCache

	mu         sync.Mutex
	history    map[string][]llms.MessageContent
	limiters   map[string]*rate.Limiter
	ratePerMin int
}

// NewAgent builds the provider from config. A nil return with nil error
// means the relay is disabled.
func NewAgent(ctx context.Context, cfg *sys.Config) (*Agent, error) {
	var model llms.Model
	var modelName string
	var err error

	switch cfg.AIProvider {
	case "":
		return nil, nil
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIKey),
			openai.WithModel(cfg.OpenAIModel),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		model, err = openai.New(opts...)
		modelName = cfg.OpenAIModel
	case "google":
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAIKey),
			googleai.WithDefaultModel(cfg.GoogleAIModel),
		)
		modelName = cfg.GoogleAIModel
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.AIProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.AIProvider, err)
	}

	return &Agent{
		model:        model,
		provider:     cfg.AIProvider,
		modelName:    modelName,
		systemPrompt: cfg.AISystemPrompt,
		temperature:  cfg.AITemperature,
		maxTokens:    cfg.AIMaxTokens,
		historySize:  cfg.AIHistorySize,
		ratePerMin:   cfg.AIRatePerMin,
		cache:        NewResponseCache(cfg.AICacheTTL),
		history:      make(map[string][]llms.MessageContent),
		limiters:     make(map[string]*rate.Limiter),
	}, nil
}

func (a *Agent) Provider() string { return a.provider }
func (a *Agent) Model() string    { return a.modelName }

func (a *Agent) limiter(channelID string) *rate.Limiter {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.limiters[channelID]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(a.ratePerMin)), a.ratePerMin)
		a.limiters[channelID] = l
	}
	return l
}

// Reply answers a user message in a channel. Cached answers skip both the
// rate limiter and the provider call.
func (a *Agent) Reply(ctx context.Context, guildID, channelID, userID, prompt string) (string, error) {
	if a == nil {
		return "", ErrDisabled
	}

	start := time.Now()
	if answer, ok := a.cache.Get(channelID, prompt); ok {
		a.logUsage(guildID, channelID, userID, prompt, answer, start, true)
		return answer, nil
	}

	if !a.limiter(channelID).Allow() {
		return "", ErrRateLimited
	}

	a.mu.Lock()
	msgs := make([]llms.MessageContent, 0, len(a.history[channelID])+2)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, a.systemPrompt))
	msgs = append(msgs, a.history[channelID]...)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, prompt))
	a.mu.Unlock()

	resp, err := a.model.GenerateContent(ctx, msgs,
		llms.WithTemperature(a.temperature),
		llms.WithMaxTokens(a.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	answer := resp.Choices[0].Content

	a.remember(channelID, prompt, answer)
	a.cache.Put(channelID, prompt, answer)
	a.logUsage(guildID, channelID, userID, prompt, answer, start, false)
	return answer, nil
}

// remember appends the exchange and trims the window to the configured size.
func (a *Agent) remember(channelID, prompt, answer string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.history[channelID]
	h = append(h,
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		llms.TextParts(llms.ChatMessageTypeAI, answer),
	)
	if len(h) > a.historySize {
		h = h[len(h)-a.historySize:]
	}
	a.history[channelID] = h
}

// ClearHistory drops the conversation window for a channel.
func (a *Agent) ClearHistory(channelID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.history, channelID)
}

func (a *Agent) logUsage(guildID, channelID, userID, prompt, answer string, start time.Time, cacheHit bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := sys.InsertAIUsage(ctx, &sys.AIUsageEntry{
		GuildID:       guildID,
		ChannelID:     channelID,
		UserID:        userID,
		Provider:      a.provider,
		Model:         a.modelName,
		PromptChars:   len(prompt),
		ResponseChars: len(answer),
		LatencyMS:     int(time.Since(start).Milliseconds()),
		CacheHit:      cacheHit,
	})
	if err != nil {
		sys.LogAI("failed to record usage: %v", err)
	}
}
