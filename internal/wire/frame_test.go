package wire

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   Frame
	}{
		{"register", Frame{Type: MsgRegister, NodeID: 3, Payload: RegisterPayload{}}},
		{"ack", Frame{Type: MsgAck, NodeID: 0, Payload: AckPayload{}}},
		{"assign", Frame{Type: MsgAssign, NodeID: 2, Payload: AssignPayload{RX: 20, RY: 0, Width: 20, Height: 20, AngleDeg: 90, Step: 1}}},
		{"data", Frame{Type: MsgData, NodeID: 1, Payload: DataPayload{X: 19.9, Y: 19.9, Heading: 0, Symbols: []byte("F+F-F")}}},
		{"handover", Frame{Type: MsgHandover, NodeID: 1, Payload: HandoverPayload{X: 20.9, Y: 19.9, Heading: 0, Consumed: 1}}},
		{"request", Frame{Type: MsgRequest, NodeID: 4, Payload: RequestPayload{Row: 19}}},
		{"response", Frame{Type: MsgResponse, NodeID: 4, Payload: ResponsePayload{Cells: bytes.Repeat([]byte{1}, 20)}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encoded := Encode(c.in)
			got, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Type != c.in.Type || got.NodeID != c.in.NodeID {
				t.Fatalf("got %+v, want %+v", got, c.in)
			}
			if gotEnc := Encode(got); !bytes.Equal(gotEnc, encoded) {
				t.Fatalf("re-encoding diverged: got %x, want %x", gotEnc, encoded)
			}
		})
	}
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	encoded := Encode(Frame{Type: MsgAck, NodeID: 0, Payload: AckPayload{}})
	encoded[len(encoded)-1] ^= 0xFF

	if _, err := Decode(encoded); err != ErrMalformed {
		t.Fatalf("Decode: got %v, want ErrMalformed", err)
	}
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	encoded := Encode(Frame{Type: MsgData, NodeID: 1, Payload: DataPayload{Symbols: []byte("FF")}})
	truncated := encoded[:len(encoded)-3]

	if _, err := Decode(truncated); err != ErrMalformed {
		t.Fatalf("Decode: got %v, want ErrMalformed", err)
	}
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	encoded := Encode(Frame{Type: MsgAck, NodeID: 0, Payload: AckPayload{}})
	encoded[0] = (2 << 4) | byte(MsgAck)
	encoded[len(encoded)-1] = checksum(encoded[:len(encoded)-1])

	if _, err := Decode(encoded); err != ErrMalformed {
		t.Fatalf("Decode: got %v, want ErrMalformed", err)
	}
}

func TestChecksumCoversWholeFrame(t *testing.T) {
	encoded := Encode(Frame{Type: MsgHandover, NodeID: 1, Payload: HandoverPayload{X: 1, Y: 2, Heading: 3, Consumed: 4}})

	var sum byte
	for _, b := range encoded[:len(encoded)-1] {
		sum += b
	}
	if sum != encoded[len(encoded)-1] {
		t.Fatalf("checksum byte %d, want %d", encoded[len(encoded)-1], sum)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	buf := []byte{(Version << 4) | 0x0F, 0, 0, 0}
	buf = append(buf, checksum(buf))

	if _, err := Decode(buf); err == nil {
		t.Fatalf("Decode: want error for unknown type")
	}
}
