package emailtools

import (
	"context"
	"net/http"
	"strings"
)

type mailshakeFetcher struct {
	http    *http.Client
	baseURL string
}

type mailshakeList struct {
	Results []struct {
		Sent    count `json:"sent"`
		Opened  count `json:"opened"`
		Replied count `json:"replied"`
		Bounced count `json:"bounced"`
	} `json:"results"`
}

// Fetch sums the counters embedded in the campaign listing.
func (f *mailshakeFetcher) Fetch(ctx context.Context, apiKey string) (Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/2017-04-01/campaigns/list", strings.NewReader("{}"))
	if err != nil {
		return Raw{}, err
	}
	req.SetBasicAuth(apiKey, "")
	req.Header.Set("Content-Type", "application/json")
	var list mailshakeList
	if err := doJSON(f.http, Mailshake, req, &list); err != nil {
		return Raw{}, err
	}
	var totals Raw
	for _, campaign := range list.Results {
		totals.add(Raw{
			EmailsSent: int64(campaign.Sent),
			Opens:      int64(campaign.Opened),
			Replies:    int64(campaign.Replied),
			Bounces:    int64(campaign.Bounced),
		})
	}
	return totals, nil
}
