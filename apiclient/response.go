package apiclient

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the API's standard success envelope: {success, data, message}.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// LoginData is the payload of POST /api/v1/auth/login.
type LoginData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshData is the payload of POST /api/v1/auth/refresh.
type RefreshData struct {
	AccessToken string `json:"accessToken"`
}

// SubscriptionData is the payload of GET /api/v1/users/me/subscription. The
// endpoint sometimes answers with the envelope and sometimes with the bare
// object; Client.Subscription tolerates both.
type SubscriptionData struct {
	IsPremium           bool       `json:"isPremium"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
}

// APIError carries a non-success HTTP status together with the envelope
// message, when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}
