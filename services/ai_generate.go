// services/ai_generate.go - AI Question Generation
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flashdeck/models"
)

// Question types the generator understands.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeFillBlank      = "fill_blank"
)

// GeneratedQuestion is one quiz question produced from a set's cards.
type GeneratedQuestion struct {
	Question      string      `json:"question"`
	Options       []string    `json:"options,omitempty"`
	CorrectAnswer interface{} `json:"correctAnswer"`
	Explanation   string      `json:"explanation,omitempty"`
}

// AIGenerateService proxies an OpenAI-compatible chat-completions API to
// turn flashcards into study questions.
type AIGenerateService struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
}

// NewAIGenerateService creates the generator. An empty apiKey leaves the
// service constructed but unavailable.
func NewAIGenerateService(apiKey, apiURL, model string) *AIGenerateService {
	return &AIGenerateService{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		apiURL:     apiURL,
		model:      model,
	}
}

func (s *AIGenerateService) IsAvailable() bool {
	return s.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateQuestions builds questions of the requested type from the
// given cards. Returns the parsed questions.
func (s *AIGenerateService) GenerateQuestions(cards []models.Flashcard, count int, questionType string) ([]GeneratedQuestion, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("AI generation is not configured")
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("no flashcards to generate questions from")
	}
	if count <= 0 {
		count = 5
	}

	var sb strings.Builder
	for _, c := range cards {
		fmt.Fprintf(&sb, "Term: %s\nDefinition: %s\n\n", c.Term, c.Definition)
	}
	cardsText := sb.String()

	systemPrompt := fmt.Sprintf("You are an expert educational AI that generates high-quality study questions. "+
		"Generate %d %s questions based on the provided flashcards. "+
		"Make questions challenging but fair, testing understanding rather than mere memorization. "+
		"Respond with ONLY a valid JSON array, no markdown and no code fences.", count, questionType)

	var userPrompt string
	switch questionType {
	case QuestionTypeMultipleChoice:
		userPrompt = fmt.Sprintf("Generate %d multiple choice questions based on these flashcards:\n\n%s\n\n"+
			`For each question provide 4 options (A, B, C, D) with exactly one correct answer. `+
			`Format as a JSON array: [{"question": "...", "options": ["A: ...", "B: ...", "C: ...", "D: ..."], "correctAnswer": "A", "explanation": "..."}]`,
			count, cardsText)
	case QuestionTypeTrueFalse:
		userPrompt = fmt.Sprintf("Generate %d true/false questions based on these flashcards:\n\n%s\n\n"+
			`Format as a JSON array: [{"question": "...", "correctAnswer": true, "explanation": "..."}]`,
			count, cardsText)
	case QuestionTypeFillBlank:
		userPrompt = fmt.Sprintf("Generate %d fill-in-the-blank questions based on these flashcards:\n\n%s\n\n"+
			`Use ___ for blanks. Format as a JSON array: [{"question": "...", "correctAnswer": "...", "explanation": "..."}]`,
			count, cardsText)
	default:
		return nil, fmt.Errorf("unknown question type: %s", questionType)
	}

	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", s.apiURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("API returned no choices")
	}

	content := stripCodeFences(chatResp.Choices[0].Message.Content)

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}
	return questions, nil
}

// stripCodeFences tolerates models that wrap JSON in markdown fences anyway.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
