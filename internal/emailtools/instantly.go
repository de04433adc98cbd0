package emailtools

import (
	"context"
	"net/http"
	"net/url"
)

type instantlyFetcher struct {
	http    *http.Client
	baseURL string
}

type instantlySummary struct {
	TotalEmailsSent      count `json:"total_emails_sent"`
	TotalOpened          count `json:"total_opened"`
	TotalReplies         count `json:"total_replies"`
	TotalPositiveReplies count `json:"total_positive_replies"`
	TotalBounced         count `json:"total_bounced"`
}

// Fetch reads the account-wide campaign summary in a single call.
func (f *instantlyFetcher) Fetch(ctx context.Context, apiKey string) (Raw, error) {
	query := url.Values{"api_key": {apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/v1/analytics/campaign/summary?"+query.Encode(), nil)
	if err != nil {
		return Raw{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var summary instantlySummary
	if err := doJSON(f.http, Instantly, req, &summary); err != nil {
		return Raw{}, err
	}
	return Raw{
		EmailsSent:      int64(summary.TotalEmailsSent),
		Opens:           int64(summary.TotalOpened),
		Replies:         int64(summary.TotalReplies),
		PositiveReplies: int64(summary.TotalPositiveReplies),
		Bounces:         int64(summary.TotalBounced),
	}, nil
}
