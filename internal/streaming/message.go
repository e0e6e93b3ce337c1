package streaming

import (
	"encoding/json"
	"errors"
)

type MessageType string

const (
	MessageTypeBlock       MessageType = "block"
	MessageTypeTransaction MessageType = "transaction"
	MessageTypeWallet      MessageType = "wallet"
)

// Message is the wire format published after each sync cycle so downstream
// consumers (alerting, archival) see the same records the dashboard serves.
type Message struct {
	Type        MessageType `json:"type"`
	TraceID     string      `json:"trace_id,omitempty"`
	BlockNumber uint64      `json:"block_number,omitempty"`
	BlockHash   string      `json:"block_hash,omitempty"`
	TxCount     uint64      `json:"tx_count,omitempty"`
	GasUsed     uint64      `json:"gas_used,omitempty"`
	TxHash      string      `json:"tx_hash,omitempty"`
	From        string      `json:"from,omitempty"`
	To          string      `json:"to,omitempty"`
	Value       string      `json:"value,omitempty"`
	Direction   string      `json:"direction,omitempty"`
	Address     string      `json:"address,omitempty"`
	Balance     string      `json:"balance,omitempty"`
	Timestamp   int64       `json:"timestamp,omitempty"`
}

func Encode(msg Message) ([]byte, error) {
	if msg.Type == "" {
		return nil, errors.New("message type is required")
	}
	return json.Marshal(msg)
}

func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" {
		return Message{}, errors.New("message type is missing")
	}
	return msg, nil
}
