package room

// PayloadIn is a message from a client. Context is an opaque client-chosen
// identifier echoed back in the response so the client can match them up.
type PayloadIn struct {
	Context        string                 `json:"context"`
	Action         string                 `json:"action"`
	AdditionalData map[string]interface{} `json:"additionalData"`
}

// Response is a message to a client
type Response struct {
	Key     string      `json:"key"`
	Context string      `json:"context,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK returns a generic success response
func OK(context string) *Response {
	return &Response{
		Key:     "ok",
		Context: context,
	}
}

func newErrorResponse(context string, err error) *Response {
	return &Response{
		Key:     "error",
		Context: context,
		Data:    err.Error(),
	}
}

// intFromPayload reads a numeric value from the payload's additional data.
// JSON numbers decode as float64.
func intFromPayload(data map[string]interface{}, key string) (int, bool) {
	raw, ok := data[key].(float64)
	if !ok {
		return 0, false
	}

	return int(raw), true
}

func stringFromPayload(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}
