package webhook

import (
	"encoding/json" // JSON decoding of untrusted payloads
	"strconv"       // Parsing string-encoded amounts
	"strings"       // Address normalization
)

// Kind tags the recognized wire shape of a webhook payload.
type Kind int

const (
	// KindUnrecognized covers null, primitives, arrays and objects that match
	// no known provider shape. Never creditable.
	KindUnrecognized Kind = iota
	// KindNotifier is the notification-provider shape: an "event" object
	// carrying a network identifier and an activity array.
	KindNotifier
	// KindRPC is a raw JSON-RPC subscription frame (params.result present).
	// Recognized so it can be acknowledged, but intentionally not parsed for
	// crediting.
	KindRPC
)

// Payload is the normalized view of one webhook delivery. Only KindNotifier
// payloads carry transfer fields; for every other kind the zero values stand.
type Payload struct {
	Kind        Kind    // Which wire shape matched
	FromAddress string  // Sender address, trimmed and lowercased
	ToAddress   string  // Recipient address, trimmed and lowercased
	TxHash      string  // Transaction hash, trimmed
	Asset       string  // Asset symbol as reported by the provider
	Network     string  // Network identifier as reported by the provider
	Value       float64 // Transfer amount in the chain's native unit
	ValueOK     bool    // Whether Value parsed as a finite number
}

// Parse normalizes an arbitrary, syntactically valid JSON body into a
// Payload. It is total: any shape mismatch yields KindUnrecognized (or an
// empty-activity KindNotifier downgraded to KindUnrecognized), never an
// error. Syntax validation of the raw body is the caller's concern.
func Parse(body []byte) Payload {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Payload{Kind: KindUnrecognized}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		// null, bool, number, string or array
		return Payload{Kind: KindUnrecognized}
	}

	// Notification-provider shape: event.network + event.activity[0]
	if event, ok := obj["event"].(map[string]any); ok {
		activity, ok := event["activity"].([]any)
		if !ok || len(activity) == 0 {
			return Payload{Kind: KindUnrecognized}
		}
		tx, ok := activity[0].(map[string]any)
		if !ok {
			return Payload{Kind: KindUnrecognized}
		}
		p := Payload{
			Kind:        KindNotifier,
			FromAddress: normalizeAddress(stringField(tx, "fromAddress")),
			ToAddress:   normalizeAddress(stringField(tx, "toAddress")),
			TxHash:      strings.TrimSpace(stringField(tx, "hash")),
			Asset:       stringField(tx, "asset"),
			Network:     stringField(event, "network"),
		}
		p.Value, p.ValueOK = parseAmount(tx["value"])
		return p
	}

	// Raw JSON-RPC subscription frame
	if params, ok := obj["params"].(map[string]any); ok {
		if _, ok := params["result"]; ok {
			return Payload{Kind: KindRPC}
		}
	}

	return Payload{Kind: KindUnrecognized}
}

// normalizeAddress trims and lowercases an address for comparison.
func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// stringField reads a string-valued key from a decoded JSON object,
// returning "" when the key is absent or not a string.
func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// parseAmount coerces a decoded JSON value into a float64 amount. Providers
// send amounts as JSON numbers or as decimal strings; anything else reports
// ok=false so validation rejects it downstream.
func parseAmount(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
