package sys

import (
	"context"
	"database/sql"
)

type AIUsageEntry struct {
	GuildID       string
	ChannelID     string
	UserID        string
	Provider      string
	Model         string
	PromptChars   int
	ResponseChars int
	LatencyMS     int
	CacheHit      bool
}

func InsertAIUsage(ctx context.Context, e *AIUsageEntry) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO ai_usage (guild_id, channel_id, user_id, provider, model, prompt_chars, response_chars, latency_ms, cache_hit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.GuildID, e.ChannelID, e.UserID, e.Provider, e.Model,
		e.PromptChars, e.ResponseChars, e.LatencyMS, e.CacheHit)
	return err
}

type AIUsageSummary struct {
	Requests      int64
	CacheHits     int64
	PromptChars   int64
	ResponseChars int64
	AvgLatencyMS  float64
}

func GetAIUsageSummary(ctx context.Context) (*AIUsageSummary, error) {
	s := &AIUsageSummary{}
	var avg sql.NullFloat64
	err := DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(cache_hit),0), COALESCE(SUM(prompt_chars),0),
		       COALESCE(SUM(response_chars),0), AVG(latency_ms)
		FROM ai_usage
	`).Scan(&s.Requests, &s.CacheHits, &s.PromptChars, &s.ResponseChars, &avg)
	if err != nil {
		return nil, err
	}
	s.AvgLatencyMS = avg.Float64
	return s, nil
}
