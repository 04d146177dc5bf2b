package route

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiPlanner запрашивает порядок обхода у модели Gemini.
type GeminiPlanner struct {
	client *genai.Client
	model  *genai.GenerativeModel
	region string
}

// NewGeminiPlanner создаёт клиент Gemini. Ответ модели запрашивается в JSON.
func NewGeminiPlanner(ctx context.Context, apiKey, modelName, region string) (*GeminiPlanner, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiPlanner{client: client, model: model, region: region}, nil
}

// Close освобождает ресурсы клиента.
func (p *GeminiPlanner) Close() error {
	return p.client.Close()
}

// Plan возвращает перестановку индексов, предложенную моделью. Проверку
// перестановки выполняет Optimizer.
func (p *GeminiPlanner) Plan(ctx context.Context, locations []Location) ([]int, string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(buildPrompt(locations, p.region)))
	if err != nil {
		return nil, "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("no response candidates from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	return parsePlan(text.String())
}

type planResponse struct {
	OptimizedOrder []int  `json:"optimizedOrder"`
	Reasoning      string `json:"reasoning"`
}

func parsePlan(raw string) ([]int, string, error) {
	clean := cleanJSONString(raw)
	if clean == "" {
		return nil, "", fmt.Errorf("empty gemini response")
	}

	var res planResponse
	if err := json.Unmarshal([]byte(clean), &res); err != nil {
		return nil, "", fmt.Errorf("parse gemini response: %w", err)
	}
	if len(res.OptimizedOrder) == 0 {
		return nil, "", fmt.Errorf("gemini response has no optimizedOrder")
	}

	return res.OptimizedOrder, res.Reasoning, nil
}

// cleanJSONString вырезает JSON-объект из ответа, обёрнутого в markdown или текст.
func cleanJSONString(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

func buildPrompt(locations []Location, region string) string {
	var b strings.Builder

	where := ""
	if region != "" {
		where = " in " + region
	}
	fmt.Fprintf(&b, "You are a route optimization expert. Given these pickup locations%s, "+
		"find the most efficient route order that minimizes total travel distance.\n\nLOCATIONS:\n", where)

	for i, loc := range locations {
		fmt.Fprintf(&b, "%d. %s (%g, %g) - %s\n", i, loc.Name, loc.Lat, loc.Lon, loc.Address)
	}

	b.WriteString(`
TASK:
1. Calculate the shortest route visiting all locations exactly once
2. Consider geographical proximity and typical road patterns
3. Start from location 0 (depot/office)
4. Return the optimized order as indices

CONSTRAINTS:
- Must visit all locations
- Start from index 0
- Minimize total distance

OUTPUT FORMAT (JSON only):
{"optimizedOrder": [0, 3, 1, 4, 2], "reasoning": "short explanation of the route"}`)

	return b.String()
}
