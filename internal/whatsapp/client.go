// internal/whatsapp/client.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://graph.facebook.com/v21.0"

// Client talks to the Meta WhatsApp Cloud API. Credentials are per account
// and passed on each call; the client itself only holds transport state.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type textPayload struct {
	Body string `json:"body"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templatePayload struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type sendRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *textPayload     `json:"text,omitempty"`
	Template         *templatePayload `json:"template,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendTemplate sends a templated message. Empty body parameters are replaced
// with a single space; the Cloud API rejects empty text parameters.
func (c *Client) SendTemplate(ctx context.Context, token, phoneNumberID, to, templateName, languageCode string, params []string) (string, error) {
	payload := &templatePayload{
		Name:     templateName,
		Language: templateLanguage{Code: languageCode},
	}

	if len(params) > 0 {
		parameters := make([]templateParameter, 0, len(params))
		for _, p := range params {
			if p == "" {
				p = " "
			}
			parameters = append(parameters, templateParameter{Type: "text", Text: p})
		}
		payload.Components = []templateComponent{
			{Type: "body", Parameters: parameters},
		}
	}

	return c.send(ctx, token, phoneNumberID, sendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         payload,
	})
}

// SendText sends a free-text message with the given literal body.
func (c *Client) SendText(ctx context.Context, token, phoneNumberID, to, body string) (string, error) {
	return c.send(ctx, token, phoneNumberID, sendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: body},
	})
}

func (c *Client) send(ctx context.Context, token, phoneNumberID string, reqBody sendRequest) (string, error) {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s", errorMessage(body))
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("failed to decode send response: %w body=%q", err, string(body))
	}
	if len(sr.Messages) == 0 || sr.Messages[0].ID == "" {
		return "", fmt.Errorf("missing message id in response body=%q", string(body))
	}

	return sr.Messages[0].ID, nil
}

// PhoneNumberInfo is the subset of the phone number node used by the
// connection test.
type PhoneNumberInfo struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	VerifiedName       string `json:"verified_name"`
	QualityRating      string `json:"quality_rating"`
}

// GetPhoneNumber fetches the phone number node, proving the token and
// phone number id pair is valid.
func (c *Client) GetPhoneNumber(ctx context.Context, token, phoneNumberID string) (*PhoneNumberInfo, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, phoneNumberID)
	body, err := c.get(ctx, token, url)
	if err != nil {
		return nil, err
	}

	var info PhoneNumberInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode phone number info: %w", err)
	}
	return &info, nil
}

// MetaTemplate is a message template as returned by the business account
// template listing.
type MetaTemplate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Language   string `json:"language"`
	Status     string `json:"status"`
	Components []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"components"`
}

type templateListResponse struct {
	Data []MetaTemplate `json:"data"`
}

// ListTemplates fetches the templates registered on a business account.
func (c *Client) ListTemplates(ctx context.Context, token, businessAccountID string) ([]MetaTemplate, error) {
	url := fmt.Sprintf("%s/%s/message_templates?limit=100", c.baseURL, businessAccountID)
	body, err := c.get(ctx, token, url)
	if err != nil {
		return nil, err
	}

	var list templateListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode template list: %w", err)
	}
	return list.Data, nil
}

func (c *Client) get(ctx context.Context, token, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s", errorMessage(body))
	}

	return body, nil
}

func errorMessage(body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		return ae.Error.Message
	}
	return "Unknown error"
}
