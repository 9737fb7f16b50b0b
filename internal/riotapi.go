package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// RiotClient performs authenticated calls against the Riot account and
// match-v5 APIs and classifies every response into parsed data, a throttle
// signal or a request failure. It never retries: the pipeline decides what a
// 429 means for the rest of the run.
type RiotClient struct {
	apiKey     string
	clusterURL string
	client     *http.Client
	logger     *Logger
	metrics    *MetricsCollector
}

func NewRiotClient(cfg *Config, logger *Logger, metrics *MetricsCollector) *RiotClient {
	clusterURL := cfg.RiotBaseURL
	if clusterURL == "" {
		clusterURL = getRegionalClusterURL(cfg.RiotRegion)
	}

	return &RiotClient{
		apiKey:     cfg.RiotAPIKey,
		clusterURL: clusterURL,
		logger:     logger,
		metrics:    metrics,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Account-v1 and match-v5 are served from the regional clusters, not the
// platform hosts.
func getRegionalClusterURL(region string) string {
	switch region {
	case "BR1", "LA1", "LA2", "NA1":
		return "https://americas.api.riotgames.com"
	case "EUW1", "EUN1", "TR1", "RU":
		return "https://europe.api.riotgames.com"
	case "JP1", "KR":
		return "https://asia.api.riotgames.com"
	case "OC1":
		return "https://sea.api.riotgames.com"
	default:
		return "https://europe.api.riotgames.com"
	}
}

func (c *RiotClient) fetch(ctx context.Context, operation, requestURL string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	start := time.Now()
	c.metrics.RecordUpstreamCall(operation)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Non-JSON bodies are kept verbatim; a parse failure on its own is
		// never an error.
		parsed = map[string]interface{}{"raw": string(body)}
	}

	c.logger.Debug("riot_api_response").
		Component("riot_client").
		Operation(operation).
		Duration(time.Since(start)).
		Meta("status", resp.StatusCode).
		Log()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.metrics.RecordThrottle()
		return nil, &RateLimitedError{
			RetryAfterSeconds: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:           embeddedStatusMessage(parsed),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := embeddedStatusMessage(parsed)
		if msg == "" {
			msg = string(body)
		}
		return nil, &RequestFailedError{
			Status:  resp.StatusCode,
			Message: truncateMessage(msg, 180),
		}
	}

	// Riot occasionally reports failures inside a 2xx body.
	if status, msg, ok := embeddedStatus(parsed); ok {
		return nil, &RequestFailedError{
			Status:  status,
			Message: truncateMessage(msg, 180),
		}
	}

	return parsed, nil
}

func parseRetryAfter(header string) *int {
	if header == "" {
		return nil
	}
	seconds, err := strconv.Atoi(header)
	if err != nil {
		return nil
	}
	return &seconds
}

// embeddedStatus inspects the parsed body for Riot's error envelope
// {"status": {"status_code": N, "message": "..."}}.
func embeddedStatus(parsed interface{}) (int, string, bool) {
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return 0, "", false
	}
	statusObj, ok := obj["status"].(map[string]interface{})
	if !ok {
		return 0, "", false
	}
	code, ok := statusObj["status_code"].(float64)
	if !ok {
		return 0, "", false
	}
	msg, _ := statusObj["message"].(string)
	return int(code), msg, true
}

func embeddedStatusMessage(parsed interface{}) string {
	_, msg, _ := embeddedStatus(parsed)
	return msg
}

func (c *RiotClient) AccountByRiotID(ctx context.Context, gameName, tagLine string) (interface{}, error) {
	if gameName == "" {
		return nil, fmt.Errorf("gameName cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.clusterURL, url.PathEscape(gameName), url.PathEscape(tagLine))
	return c.fetch(ctx, "account_by_riot_id", requestURL)
}

func (c *RiotClient) MatchIDsByPUUID(ctx context.Context, puuid string, count int) (interface{}, error) {
	requestURL := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?type=ranked&start=0&count=%d",
		c.clusterURL, url.PathEscape(puuid), count)
	return c.fetch(ctx, "match_ids_by_puuid", requestURL)
}

func (c *RiotClient) MatchByID(ctx context.Context, matchID string) (interface{}, error) {
	requestURL := fmt.Sprintf("%s/lol/match/v5/matches/%s",
		c.clusterURL, url.PathEscape(matchID))
	return c.fetch(ctx, "match_by_id", requestURL)
}
