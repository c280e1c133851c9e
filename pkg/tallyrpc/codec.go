// Package tallyrpc defines the Connect RPC surface of the tally services:
// request and response messages, handler constructors and clients. Messages
// are plain Go structs carried as JSON.
package tallyrpc

import (
	"encoding/json"
	"fmt"
)

// CodecName is registered for both handlers and clients. It replaces
// Connect's default protobuf JSON codec, which only accepts proto messages.
const CodecName = "json"

// Codec marshals messages with encoding/json.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal treats an empty body as an empty message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
