package model

// AssistRequest is the body of POST /ai/assist.  Message is a pointer so the
// handler can tell an absent or null message from an empty one.
type AssistRequest struct {
	Message *string `json:"message"`
	Context *string `json:"context"`
}

// AssistReply is the body returned by POST /ai/assist.
type AssistReply struct {
	Reply string `json:"reply"`
}

// MessageResponse is returned by the liveness routes.
type MessageResponse struct {
	Message string `json:"message"`
}
