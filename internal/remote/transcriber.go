package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
)

// Transcriber calls the remote speech-to-text service with a multipart
// audio upload and returns the recognized text.
type Transcriber struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewTranscriber creates a client for the transcription endpoint.
func NewTranscriber(endpoint, apiKey string) *Transcriber {
	return &Transcriber{endpoint: endpoint, apiKey: apiKey, client: defaultClient}
}

type transcribeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Transcribe uploads the audio and returns the transcription text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio", fileName)
	if err != nil {
		return "", &CallError{Stage: StageTranscribe, Message: "create form file: " + err.Error()}
	}
	if _, err := part.Write(audio); err != nil {
		return "", &CallError{Stage: StageTranscribe, Message: "write form file: " + err.Error()}
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &body)
	if err != nil {
		return "", &CallError{Stage: StageTranscribe, Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &CallError{Stage: StageTranscribe, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &CallError{Stage: StageTranscribe, StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var decoded transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &CallError{Stage: StageTranscribe, Message: "decode response: " + err.Error()}
	}
	if decoded.Error != "" {
		return "", &CallError{Stage: StageTranscribe, StatusCode: resp.StatusCode, Message: decoded.Error}
	}

	return decoded.Text, nil
}
