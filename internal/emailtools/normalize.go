package emailtools

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Raw is a provider aggregate summed across every campaign of an account.
type Raw struct {
	EmailsSent      int64
	Opens           int64
	Replies         int64
	PositiveReplies int64
	Bounces         int64
}

func (r *Raw) add(other Raw) {
	r.EmailsSent += other.EmailsSent
	r.Opens += other.Opens
	r.Replies += other.Replies
	r.PositiveReplies += other.PositiveReplies
	r.Bounces += other.Bounces
}

// Metrics is the canonical shape every provider is mapped into. Rates are
// percentages of emails sent, in [0,100] for sane inputs.
type Metrics struct {
	EmailsSent      int64   `json:"emailsSent"`
	Replies         int64   `json:"replies"`
	PositiveReplies int64   `json:"positiveReplies"`
	OpenRate        float64 `json:"openRate"`
	BounceRate      float64 `json:"bounceRate"`
}

// Normalize converts a raw aggregate into canonical metrics. Both rates are 0
// when nothing was sent.
func Normalize(raw Raw) Metrics {
	m := Metrics{
		EmailsSent:      raw.EmailsSent,
		Replies:         raw.Replies,
		PositiveReplies: raw.PositiveReplies,
	}
	if raw.EmailsSent > 0 {
		sent := float64(raw.EmailsSent)
		m.OpenRate = float64(raw.Opens) / sent * 100
		m.BounceRate = float64(raw.Bounces) / sent * 100
	}
	return m
}

// count decodes provider numbers leniently: JSON numbers, numeric strings and
// null are accepted, and anything unparseable reads as 0.
type count int64

func (c *count) UnmarshalJSON(data []byte) error {
	*c = 0
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		return nil
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		*c = count(v)
		return nil
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		*c = count(int64(v))
	}
	return nil
}

// campaignID accepts numeric or string identifiers.
type campaignID string

func (id *campaignID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = campaignID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = campaignID(n.String())
	return nil
}
