package api

import (
	"encoding/json"
	"fmt"
)

// envelope is the single documented response shape. The client never probes
// alternative shapes: a body without the success key is a decode error.
type envelope struct {
	Success *bool               `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors"`
}

// decodeEnvelope turns a response body into either out or a normalized error.
func decodeEnvelope(status int, body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status >= 200 && status < 300 {
			return &Error{
				Kind:    KindDecode,
				Status:  status,
				Message: "response is not a valid envelope",
				Raw:     body,
				cause:   err,
			}
		}
		// error responses without a parseable body still surface as
		// application errors so the status is not lost
		return &Error{Kind: KindApplication, Status: status, Raw: body, cause: err}
	}

	if env.Success == nil {
		return &Error{
			Kind:    KindDecode,
			Status:  status,
			Message: "response envelope is missing the success field",
			Raw:     body,
		}
	}

	if !*env.Success || status < 200 || status >= 300 {
		kind := KindApplication
		if len(env.Errors) > 0 {
			kind = KindValidation
		}
		return &Error{
			Kind:    kind,
			Status:  status,
			Code:    env.Code,
			Message: env.Message,
			Details: env.Errors,
			Raw:     body,
		}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &Error{
			Kind:    KindDecode,
			Status:  status,
			Message: "response envelope has no data payload",
			Raw:     body,
		}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{
			Kind:    KindDecode,
			Status:  status,
			Message: fmt.Sprintf("decode data payload: %v", err),
			Raw:     body,
			cause:   err,
		}
	}
	return nil
}
