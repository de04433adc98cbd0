package emailtools

import (
	"context"
	"net/http"
	"net/url"
)

type smartleadFetcher struct {
	http    *http.Client
	baseURL string
}

type smartleadCampaign struct {
	ID campaignID `json:"id"`
}

type smartleadAnalytics struct {
	SentCount   count `json:"sent_count"`
	OpenCount   count `json:"open_count"`
	ReplyCount  count `json:"reply_count"`
	BounceCount count `json:"bounce_count"`
}

// Fetch lists campaigns, then sums per-campaign analytics. A campaign whose
// analytics call fails contributes nothing; a cancelled context fails the
// whole fetch.
func (f *smartleadFetcher) Fetch(ctx context.Context, apiKey string) (Raw, error) {
	query := url.Values{"api_key": {apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/v1/campaigns?"+query, nil)
	if err != nil {
		return Raw{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var campaigns []smartleadCampaign
	if err := doJSON(f.http, Smartlead, req, &campaigns); err != nil {
		return Raw{}, err
	}

	var totals Raw
	for _, campaign := range campaigns {
		statsURL := f.baseURL + "/api/v1/campaigns/" + url.PathEscape(string(campaign.ID)) + "/analytics?" + query
		statsReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statsURL, nil)
		if err != nil {
			continue
		}
		var stats smartleadAnalytics
		if err := doJSON(f.http, Smartlead, statsReq, &stats); err != nil {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		totals.add(Raw{
			EmailsSent: int64(stats.SentCount),
			Opens:      int64(stats.OpenCount),
			Replies:    int64(stats.ReplyCount),
			Bounces:    int64(stats.BounceCount),
		})
	}
	if err := ctx.Err(); err != nil {
		return Raw{}, err
	}
	return totals, nil
}
