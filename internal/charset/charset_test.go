package charset

import (
	"errors"
	"testing"
)

func TestDetect_UTF8(t *testing.T) {
	enc, err := Detect("doc.rst", []byte("plain text\n"))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if enc.Name != "utf-8" {
		t.Errorf("Name = %q, want utf-8", enc.Name)
	}
}

func TestDetect_UTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("text\n")...)
	enc, err := Detect("doc.rst", raw)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if enc.Name != "utf-8-sig" {
		t.Errorf("Name = %q, want utf-8-sig", enc.Name)
	}
	text, err := enc.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if text != "text\n" {
		t.Errorf("Decode = %q, want %q (BOM stripped)", text, "text\n")
	}
}

func TestDetect_UTF16LE(t *testing.T) {
	raw := []byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0}
	enc, err := Detect("doc.rst", raw)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if enc.Name != "utf-16-le" {
		t.Errorf("Name = %q, want utf-16-le", enc.Name)
	}
	text, err := enc.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if text != "hi\n" {
		t.Errorf("Decode = %q, want %q", text, "hi\n")
	}
}

func TestDetect_Undecodable(t *testing.T) {
	_, err := Detect("doc.rst", []byte{0x80, 0x81, 0xFF})
	var undecodable ErrUndecodable
	if !errors.As(err, &undecodable) {
		t.Fatalf("err = %v, want ErrUndecodable", err)
	}
	if undecodable.Path != "doc.rst" {
		t.Errorf("Path = %q, want doc.rst", undecodable.Path)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	raw := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
	enc, err := Detect("doc.rst", raw)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	text, err := enc.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := enc.Encode(text)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(out) != string(raw) {
		t.Errorf("Encode = % x, want % x", out, raw)
	}
}

func TestNewline_DetectionOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"crlf", "a\r\nb\r\n", "\r\n"},
		{"lf", "a\nb\n", "\n"},
		{"cr", "a\rb\r", "\r"},
		{"crlf wins over lone lf", "a\r\nb\n", "\r\n"},
		{"none", "no newline", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Newline(tt.text); got != tt.want {
				t.Errorf("Newline(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
