package streaming

import "testing"

func TestEncodeRequiresType(t *testing.T) {
	if _, err := Encode(Message{BlockNumber: 1}); err == nil {
		t.Error("expected error for missing type")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload, err := Encode(Message{
		Type:        MessageTypeBlock,
		BlockNumber: 42,
		BlockHash:   "0xabc",
		TxCount:     3,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msg, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != MessageTypeBlock || msg.BlockNumber != 42 || msg.TxCount != 3 {
		t.Errorf("round trip lost fields: %+v", msg)
	}
}

func TestDecodeRejectsMissingType(t *testing.T) {
	if _, err := Decode([]byte(`{"block_number": 7}`)); err == nil {
		t.Error("expected error for missing type")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}
