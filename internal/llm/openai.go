package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	MaxTokens     = 500
	Temperature   = 0.0 // Deterministic output for consistent SQL generation
)

const systemPrompt = "Tu es un assistant qui génère du SQL SQLite."

const schemaDescription = `Tu es un assistant SQL. Tu écris uniquement du SQL SQLite.
Base de données des jeux : table ` + "`jeux`" + `.

Colonnes de la table ` + "`jeux`" + ` :
- nom_du_jeu TEXT : le nom du jeu
- temps_de_jeu TEXT : durée lisible, ex "10 - 20 min"
- duree_min_minutes INTEGER : durée minimum en minutes
- duree_max_minutes INTEGER : durée maximum en minutes
- nombre_de_joueurs TEXT : ex "2 à 4"
- joueurs_min INTEGER : nombre minimum de joueurs
- joueurs_max INTEGER : nombre maximum de joueurs
- en_equipe TEXT : "OUI" si jeu en équipes, "AU CHOIX" si en équipes possibles, "NON" sinon
- support_particulier TEXT : ex "Cartes, Dés"
- type_de_jeu TEXT : ex "Connaissances, Rapidité", "Compétitif"
- tout_le_monde_peut_jouer TEXT : "oui" si accessible à tout le monde, "non" sinon

Règles :
- Réponds avec UNE SEULE requête SELECT valide pour SQLite.
- Utilise uniquement la table ` + "`jeux`" + `.
- Utilise uniquement les colonnes données ci-dessus.
- Ne modifie pas la base de données.
- Pas de point-virgule final.
- Inclue un ORDER BY nom_du_jeu.
- Retourne toutes les colonnes avec SELECT *.
- Pour les filtres de texte, utilise toujours LIKE avec des % et des guillemets simples, jamais =.
- Pour les jeux en équipes, "OUI" et "AU CHOIX" sont acceptables si on veut inclure les jeux en équipes.
- Ne réponds pas avec du texte, uniquement la requête SQL.`

const fewShotExamples = `Exemple 1 :
Question : "je veux tous les jeux coopératifs pour 2 joueurs"
Réponse :
SELECT *
FROM jeux
WHERE type_de_jeu LIKE '%Coopératif%'
AND joueurs_min <= 2
AND joueurs_max >= 2
ORDER BY nom_du_jeu

Exemple 2 :
Question : "jeux de culture générale de moins de 15 minutes"
Réponse :
SELECT *
FROM jeux
WHERE type_de_jeu LIKE '%Culture générale%'
AND (duree_min_minutes <= 15 OR duree_max_minutes <= 15)
ORDER BY nom_du_jeu

Exemple 3 :
Question : "nom = Citadelles"
Réponse :
SELECT *
FROM jeux
WHERE nom_du_jeu = 'Citadelles'
ORDER BY nom_du_jeu`

// OpenAIClient implements the Client interface using OpenAI's chat
// completions API.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// OpenAI API request structures
type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAI API response structures
type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

// NewOpenAIClient creates a new OpenAI-backed SQL generator.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := config.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		apiKey:  config.APIKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GenerateSQL asks the model for a single SELECT statement answering the
// question. The returned text is raw model output and must be validated
// by the caller.
func (c *OpenAIClient) GenerateSQL(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf("%s\n\n%s\n\nMaintenant, écris uniquement la requête SQL pour :\nQuestion : %q\nRéponse :",
		schemaDescription, fewShotExamples, question)

	request := chatRequest{
		Model:       c.model,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	response, err := c.sendRequestWithRetry(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenAI: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	return extractSQL(response.Choices[0].Message.Content), nil
}

// sendRequest handles the HTTP communication with the OpenAI API.
func (c *OpenAIClient) sendRequest(ctx context.Context, request chatRequest) (*chatResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp.StatusCode, body)
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &response, nil
}

// handleAPIError processes OpenAI API errors
func (c *OpenAIClient) handleAPIError(statusCode int, body []byte) error {
	var errorResponse apiErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil {
		return fmt.Errorf("API error %d: %s", statusCode, string(body))
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("invalid API key: %s", errorResponse.Error.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("rate limit exceeded: %s", errorResponse.Error.Message)
	case http.StatusBadRequest:
		return fmt.Errorf("bad request: %s", errorResponse.Error.Message)
	case http.StatusInternalServerError:
		return fmt.Errorf("OpenAI API internal error: %s", errorResponse.Error.Message)
	default:
		return fmt.Errorf("OpenAI API error %d: %s", statusCode, errorResponse.Error.Message)
	}
}

var codeFenceRegex = regexp.MustCompile("(?s)```(?:sql|sqlite)?\n?(.*?)\n?```")

// extractSQL strips markdown code fences the model sometimes wraps its
// answer in. It does not trim semicolons or otherwise rewrite the query;
// the safety validator judges the text as generated.
func extractSQL(text string) string {
	text = strings.TrimSpace(text)
	if matches := codeFenceRegex.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return text
}
