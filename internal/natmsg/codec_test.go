package natmsg

import (
	"bytes"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: []byte{}},
		{name: "small", payload: []byte(`{"action":"getUserInfo"}`)},
		{name: "binary", payload: []byte{0, 1, 2, 255, 254}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteFrame(&buf, tt.payload); err != nil {
				t.Fatalf("WriteFrame error = %v", err)
			}

			got, err := ReadFrame(&buf, DefaultMaxFrameSize)
			if err != nil {
				t.Fatalf("ReadFrame error = %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("round trip mismatch: got %v, want %v", got, tt.payload)
			}
		})
	}
}

func TestFrameSequence(t *testing.T) {
	var buf bytes.Buffer
	frames := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatal(err)
		}
	}

	for i, want := range frames {
		got, err := ReadFrame(&buf, DefaultMaxFrameSize)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if string(got) != string(want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}

	if _, err := ReadFrame(&buf, DefaultMaxFrameSize); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestReadFrameLimit(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, make([]byte, 1024)); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadFrame(&buf, 512); err == nil {
		t.Error("expected error for frame over limit")
	}
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("full payload")); err != nil {
		t.Fatal(err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-3])

	if _, err := ReadFrame(truncated, DefaultMaxFrameSize); err == nil {
		t.Error("expected error for truncated frame")
	}
}
