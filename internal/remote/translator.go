package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Translation is the successful result of the translate+synthesize call.
// AudioData stays in its base64 wire form; it is persisted as-is.
type Translation struct {
	Text        string
	AudioData   string
	ContentType string
}

// Translator calls the remote machine-translation and text-to-speech
// service.
type Translator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewTranslator creates a client for the translation endpoint.
func NewTranslator(endpoint, apiKey string) *Translator {
	return &Translator{endpoint: endpoint, apiKey: apiKey, client: defaultClient}
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	AudioData      string `json:"audioData"`
	ContentType    string `json:"contentType"`
	Error          string `json:"error,omitempty"`
}

// Translate sends the text and target language code and returns the
// translated text with synthesized audio.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (Translation, error) {
	payload, err := json.Marshal(translateRequest{Text: text, TargetLanguage: targetLanguage})
	if err != nil {
		return Translation{}, &CallError{Stage: StageTranslate, Message: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Translation{}, &CallError{Stage: StageTranslate, Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return Translation{}, &CallError{Stage: StageTranslate, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Translation{}, &CallError{Stage: StageTranslate, StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Translation{}, &CallError{Stage: StageTranslate, Message: "decode response: " + err.Error()}
	}
	if decoded.Error != "" {
		return Translation{}, &CallError{Stage: StageTranslate, StatusCode: resp.StatusCode, Message: decoded.Error}
	}

	contentType := decoded.ContentType
	if contentType == "" {
		contentType = "audio/wav"
	}

	return Translation{
		Text:        decoded.TranslatedText,
		AudioData:   decoded.AudioData,
		ContentType: contentType,
	}, nil
}
