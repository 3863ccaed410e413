package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// ParseReceiptTimeout is the timeout for Gemini API calls.
const ParseReceiptTimeout = 30 * time.Second

// maxItems caps the line items kept for the expense description.
const maxItems = 8

var (
	// ErrParseTimeout indicates the Gemini API call timed out.
	ErrParseTimeout = errors.New("receipt parsing timed out")
	// ErrNoData indicates no usable data could be extracted from the receipt.
	ErrNoData = errors.New("no usable data extracted from receipt")
	// ErrNoImage is returned for an empty upload.
	ErrNoImage = errors.New("image data is required")
)

// ReceiptData is what could be read off a market receipt.
type ReceiptData struct {
	Amount     decimal.Decimal
	Shop       string
	Date       time.Time
	Items      []string
	Confidence float64
}

// HasAmount reports whether a total was read.
func (r *ReceiptData) HasAmount() bool {
	return !r.Amount.IsZero()
}

// HasShop reports whether the shop name was read.
func (r *ReceiptData) HasShop() bool {
	return r.Shop != ""
}

// IsEmpty reports whether nothing usable was read.
func (r *ReceiptData) IsEmpty() bool {
	return !r.HasAmount() && !r.HasShop()
}

// Description joins the line items into an expense description.
func (r *ReceiptData) Description() string {
	items := r.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	desc := strings.Join(items, ", ")
	if len(r.Items) > maxItems {
		desc += fmt.Sprintf(" +%d more", len(r.Items)-maxItems)
	}
	return desc
}

// DateString formats the receipt date as YYYY-MM-DD, or "" when unknown.
func (r *ReceiptData) DateString() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format("2006-01-02")
}

type receiptResponse struct {
	Amount     string   `json:"amount"`
	Shop       string   `json:"shop"`
	Date       string   `json:"date"`
	Items      []string `json:"items"`
	Confidence float64  `json:"confidence"`
}

const receiptPrompt = `Analyze this market or grocery receipt from a shared household kitchen.
Return ONLY a JSON object.

Fields:
- amount: the grand total paid (numeric string, e.g. "1250.50")
- shop: the shop or market name
- date: the purchase date in YYYY-MM-DD format
- items: up to 8 short item names (e.g. "rice", "lentils", "chicken")
- confidence: your confidence in the extraction (0.0 to 1.0)

If a field cannot be determined use "" for text, "0" for amount, [] for items and 0.0 for confidence.

Example:
{"amount": "1250.50", "shop": "Karwan Bazar", "date": "2026-04-09", "items": ["rice", "onion"], "confidence": 0.9}`

// ParseReceipt extracts a market expense from a receipt image.
func (c *Client) ParseReceipt(ctx context.Context, imageBytes []byte, mimeType string) (*ReceiptData, error) {
	if len(imageBytes) == 0 {
		return nil, ErrNoImage
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ParseReceiptTimeout)
	defer cancel()

	resp, err := c.generator.GenerateContent(timeoutCtx, c.model, []*genai.Content{
		{
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageBytes}},
				{Text: receiptPrompt},
			},
		},
	}, &genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	data, err := parseReceiptResponse(text.String())
	if err != nil {
		return nil, err
	}
	if data.IsEmpty() {
		return nil, ErrNoData
	}
	return data, nil
}

func parseReceiptResponse(response string) (*ReceiptData, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var rr receiptResponse
	if err := json.Unmarshal([]byte(response), &rr); err != nil {
		return nil, fmt.Errorf("failed to parse receipt response: %w", err)
	}

	data := &ReceiptData{
		Shop:       strings.TrimSpace(rr.Shop),
		Confidence: rr.Confidence,
	}
	for _, item := range rr.Items {
		if item = strings.TrimSpace(item); item != "" {
			data.Items = append(data.Items, item)
		}
	}

	if rr.Amount != "" && rr.Amount != "0" {
		amount, err := decimal.NewFromString(strings.ReplaceAll(rr.Amount, ",", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", rr.Amount, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("negative receipt total %q", rr.Amount)
		}
		data.Amount = amount
	}

	if rr.Date != "" {
		if date, err := time.Parse("2006-01-02", rr.Date); err == nil {
			data.Date = date
		}
	}

	return data, nil
}
