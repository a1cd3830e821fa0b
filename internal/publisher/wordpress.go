package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobharvest/internal/config"
	"jobharvest/internal/logging/types"
	"jobharvest/pkg/utils"
)

const defaultWordPressCategory = 242

// WPPost is the subset of the WordPress REST response the publisher needs.
type WPPost struct {
	ID   int64
	Link string
}

// WPClient publishes draft posts to a single WordPress site over the
// wp/v2 REST API using application-password basic auth.
type WPClient struct {
	site   config.WordPressSite
	client *http.Client
	logger types.Logger
}

func NewWPClient(site config.WordPressSite, logger types.Logger) *WPClient {
	return &WPClient{
		site: site,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (c *WPClient) SiteLabel() string {
	return c.site.Label
}

func (c *WPClient) IsConfigured() bool {
	return c.site.BaseURL != "" && c.site.Username != "" && c.site.Password != ""
}

// CreateDraft creates a draft post and returns its id and link. Sites
// fronted by security plugins rewrite the response envelope in a few
// known ways, so id and link extraction is deliberately tolerant.
func (c *WPClient) CreateDraft(ctx context.Context, title, content, excerpt string) (*WPPost, error) {
	if !c.IsConfigured() {
		return nil, utils.NewPublishError(fmt.Sprintf("wordpress site %s is not configured", c.site.Label))
	}

	categories := c.site.Categories
	if len(categories) == 0 {
		categories = []int{defaultWordPressCategory}
	}

	payload := map[string]interface{}{
		"title":      title,
		"status":     "draft",
		"content":    content,
		"excerpt":    excerpt,
		"categories": categories,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post payload: %w", err)
	}

	endpoint := strings.TrimRight(c.site.BaseURL, "/") + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth(c.site.Username, c.site.Password))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress request to %s failed: %w", c.site.Label, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read wordpress response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, utils.NewPublishError(fmt.Sprintf("wordpress %s returned status %d: %s",
			c.site.Label, resp.StatusCode, utils.TruncateRunes(string(raw), 300)))
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, utils.NewPublishError(fmt.Sprintf("wordpress %s returned non-JSON body: %s",
			c.site.Label, utils.TruncateRunes(string(raw), 300)))
	}

	if success, ok := envelope["success"].(bool); ok && !success {
		msg, _ := envelope["message"].(string)
		return nil, utils.NewPublishError(fmt.Sprintf("wordpress %s rejected the post: %s", c.site.Label, msg))
	}

	post := &WPPost{
		ID:   extractPostID(envelope),
		Link: extractPostLink(envelope, resp.Header.Get("Location")),
	}
	if post.ID == 0 && post.Link == "" {
		return nil, utils.NewPublishError(fmt.Sprintf("wordpress %s response carried neither id nor link: %s",
			c.site.Label, utils.TruncateRunes(string(raw), 300)))
	}
	return post, nil
}

func basicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

func extractPostID(envelope map[string]interface{}) int64 {
	for _, key := range []string{"id", "post_id"} {
		if id := asInt64(envelope[key]); id != 0 {
			return id
		}
	}
	if data, ok := envelope["data"].(map[string]interface{}); ok {
		for _, key := range []string{"id", "post_id"} {
			if id := asInt64(data[key]); id != 0 {
				return id
			}
		}
	}
	return 0
}

func extractPostLink(envelope map[string]interface{}, locationHeader string) string {
	candidates := []interface{}{envelope["link"]}
	if guid, ok := envelope["guid"].(map[string]interface{}); ok {
		candidates = append(candidates, guid["rendered"])
	}
	if data, ok := envelope["data"].(map[string]interface{}); ok {
		candidates = append(candidates, data["link"], data["permalink"])
	}
	candidates = append(candidates, locationHeader)

	for _, candidate := range candidates {
		link, ok := candidate.(string)
		if !ok {
			continue
		}
		link = strings.TrimSpace(link)
		link = strings.TrimPrefix(link, "<")
		link = strings.TrimSuffix(link, ">")
		if link != "" {
			return link
		}
	}
	return ""
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		var parsed int64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &parsed); err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
