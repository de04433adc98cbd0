package emailtools

import (
	"context"
	"net/http"
	"net/url"
)

type woodpeckerFetcher struct {
	http    *http.Client
	baseURL string
}

type woodpeckerCampaign struct {
	ID campaignID `json:"id"`
}

type woodpeckerStats struct {
	Delivered count `json:"delivered"`
	Opened    count `json:"opened"`
	Replied   count `json:"replied"`
	Bounced   count `json:"bounced"`
}

// Fetch lists campaigns, then sums per-campaign stats. Woodpecker uses the
// api key as basic auth user with a fixed "X" password.
func (f *woodpeckerFetcher) Fetch(ctx context.Context, apiKey string) (Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/rest/v1/campaign_list", nil)
	if err != nil {
		return Raw{}, err
	}
	req.SetBasicAuth(apiKey, "X")
	req.Header.Set("Content-Type", "application/json")
	var campaigns []woodpeckerCampaign
	if err := doJSON(f.http, Woodpecker, req, &campaigns); err != nil {
		return Raw{}, err
	}

	var totals Raw
	for _, campaign := range campaigns {
		statsReq, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/rest/v1/campaigns/"+url.PathEscape(string(campaign.ID))+"/stats", nil)
		if err != nil {
			continue
		}
		statsReq.SetBasicAuth(apiKey, "X")
		var stats woodpeckerStats
		if err := doJSON(f.http, Woodpecker, statsReq, &stats); err != nil {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		totals.add(Raw{
			EmailsSent: int64(stats.Delivered),
			Opens:      int64(stats.Opened),
			Replies:    int64(stats.Replied),
			Bounces:    int64(stats.Bounced),
		})
	}
	if err := ctx.Err(); err != nil {
		return Raw{}, err
	}
	return totals, nil
}
