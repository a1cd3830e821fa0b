package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
)

// rewritePromptTemplate instructs the model to produce an original article
// body. The job payload JSON is substituted for the trailing marker.
const rewritePromptTemplate = `You are a professional job content writer and editor.

Your task:
Rewrite and professionally rephrase the provided job data into an ORIGINAL, human-written job post.
The final content must NOT copy wording, sentence structure, or phrasing from the source job board.
All text must be written in your own natural, professional wording while preserving the original meaning.

CRITICAL CONTENT RULES (must follow strictly):
- DO NOT copy sentences verbatim from the source.
- DO NOT closely mirror sentence structure or phrasing.
- Rewrite everything in clear, natural, human-like language.
- Ensure the content reads as manually written by a professional recruiter.
- Maintain factual accuracy and do NOT invent details.

STRUCTURE & OUTPUT RULES:
- Focus ONLY on the job post content.
- Output ONLY a single <article> element.
- If a heading cannot be populated from the JSON, OMIT the heading AND its divider completely.
- Use <div class="divider">Shape</div> ONLY between valid sections.

ALLOWED SECTION ORDER (do not change):

1. <h1>Job Title - Company (Location)</h1>

2. Metadata block using <p> tags with <strong> labels (include only if data exists):
   - Company
   - Location
   - Salary
   - Job Type
   - Industry
   - Experience Required
   - Work Model

3. <h2>About the Role</h2>
4. <h2>Key Responsibilities</h2>
5. <h2>Required Skills</h2>
6. <h2>Qualifications</h2>
7. <h2>Key Traits</h2> (only if traits are explicitly present)
8. <h2>Why Join [Company Name]</h2>
9. <h2>How to Apply</h2>
   - Include the apply link exactly as:
     <a href="URL" target="_blank" rel="noopener">Apply Now</a>
10. <h2>SEO Meta Details</h2>
    - <p><strong>Meta Title:</strong> an original SEO-friendly title</p>
    - <p><strong>Meta Description:</strong> a natural meta description</p>

STYLE RULES:
- Professional, recruiter-style tone with short, clear paragraphs.
- Bullet points where appropriate.
- No placeholders like "Not provided".
- Escape HTML properly.

Return ONLY valid HTML.

JSON INPUT:
{{INSERT_JSON_HERE}}`

// ClaudeRewriter generates article drafts with Anthropic's Claude.
type ClaudeRewriter struct {
	client anthropic.Client
	config *config.Config
	logger types.Logger
}

// NewClaudeRewriter creates a new Claude-backed rewriter
func NewClaudeRewriter(cfg *config.Config) *ClaudeRewriter {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeRewriter{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// RewriteArticle generates the article HTML for a job record
func (cr *ClaudeRewriter) RewriteArticle(ctx context.Context, payload RewritePayload) (string, error) {
	startTime := time.Now()

	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode rewrite payload: %w", err)
	}

	prompt := strings.Replace(rewritePromptTemplate, "{{INSERT_JSON_HERE}}", string(payloadJSON), 1)

	response, err := cr.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cr.config.LLM.Model),
		MaxTokens:   int64(cr.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cr.config.LLM.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	article, err := extractResponseText(response)
	if err != nil {
		return "", err
	}

	cr.logger.Info("Article rewrite completed", map[string]interface{}{
		"job_id":          payload.Job.JobID,
		"provider":        "claude",
		"processing_time": time.Since(startTime).String(),
	})

	return article, nil
}

// extractResponseText pulls the text block out of the response and strips
// markdown code fences the model sometimes wraps HTML in.
func extractResponseText(response *anthropic.Message) (string, error) {
	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	var text string
	for _, content := range response.Content {
		textContent := content.AsText()
		text = textContent.Text
		break
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text content in Claude response")
	}

	for _, fence := range []string{"```html", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			text = strings.TrimSuffix(text, "```")
			text = strings.TrimSpace(text)
			break
		}
	}

	return text, nil
}

// IsHealthy checks if the rewriter backend is available
func (cr *ClaudeRewriter) IsHealthy(ctx context.Context) error {
	if cr.config.LLM.APIKey == "" {
		return fmt.Errorf("claude API key not configured")
	}
	return nil
}

// ProviderName returns the name of the backing provider
func (cr *ClaudeRewriter) ProviderName() string {
	return "claude"
}
