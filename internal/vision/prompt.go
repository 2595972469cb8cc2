package vision

// systemPrompt fixes the JSON shape the extractor expects.
const systemPrompt = `You are a professional nutritionist and food analysis expert with a sense of humor. Analyze the food image and provide detailed nutritional information. Always include a funny food-related meme or joke in your response. Return ONLY a valid JSON object with this exact structure:
{
  "foodName": "string",
  "isHealthy": boolean,
  "healthReason": "string",
  "nutrition": {
    "calories": number,
    "carbs": number,
    "protein": number,
    "fat": number,
    "fiber": number,
    "sugar": number,
    "sodium": number
  },
  "healthTip": "string",
  "portionSize": "string",
  "ingredients": ["string"],
  "allergens": ["string"],
  "meme": "string - a funny food-related joke or meme text"
}`

const userPrompt = "Analyze this food image and provide detailed nutritional information. Be as accurate as possible with the nutrition values based on typical serving sizes. Also include a funny food-related meme or joke!"

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

// chatMessage content is a plain string for the system turn and a list of
// parts for the user turn.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) newRequest(image string) *chatRequest {
	return &chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: userPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: image}},
			}},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
}
