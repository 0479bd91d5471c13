package transport

import "encoding/json"

// inboundEnvelope is the flat JSON shape clients send. Only the fields
// relevant to Type are populated on any given message; unknown fields are
// ignored per spec §6 ("Unknown fields MUST be ignored to permit forward
// compatibility").
type inboundEnvelope struct {
	Type string `json:"type"`

	// join-queue
	UserID          string `json:"user_id,omitempty"`
	Username        string `json:"username,omitempty"`
	Gender          string `json:"gender,omitempty"`
	PreferredGender string `json:"preferred_gender,omitempty"`
	Tier            string `json:"tier,omitempty"`
	Age             int    `json:"age,omitempty"`

	// offer / answer / ice-candidate
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	TargetID  string          `json:"target_id,omitempty"`

	// message
	Text string `json:"text,omitempty"`
}
