package tcat

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLabelRoundTrip(t *testing.T) {
	raw, err := BuildLabel("label-0", 20)
	if err != nil {
		t.Fatalf("BuildLabel() error = %v", err)
	}
	if got := ParseLabel(raw); got != "label-0" {
		t.Errorf("ParseLabel() = %q, want %q", got, "label-0")
	}
}

func TestBuildLabelTooLong(t *testing.T) {
	if _, err := BuildLabel("123456789", 8); err == nil {
		t.Error("BuildLabel() expected error for oversized label")
	}
	// The terminating NUL needs one byte.
	if _, err := BuildLabel("12345678", 8); err == nil {
		t.Error("BuildLabel() expected error for label filling the field")
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	labels := make([]string, 10)
	for i := range labels {
		labels[i] = fmt.Sprintf("label-%d", i)
	}

	raw, err := BuildLabels(labels, 100)
	if err != nil {
		t.Fatalf("BuildLabels() error = %v", err)
	}
	if diff := cmp.Diff(labels, ParseLabels(raw)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLabelsInsufficient(t *testing.T) {
	if _, err := BuildLabels([]string{"abcdef", "ghijkl"}, 12); err == nil {
		t.Error("BuildLabels() expected error for insufficient field")
	}
}

// Register content captured from a device: sixteen channel names followed
// by stale bytes beyond the double backslash terminator.
func TestParseLabelsDeviceCapture(t *testing.T) {
	raw := []byte{
		0x5c, 0x31, 0x4e, 0x49, 0x5c, 0x32, 0x4e, 0x49, 0x5c, 0x33, 0x4e, 0x49, 0x5c, 0x34,
		0x4e, 0x49, 0x5c, 0x35, 0x4e, 0x49, 0x5c, 0x36, 0x4e, 0x49, 0x5c, 0x37, 0x4e, 0x49,
		0x5c, 0x38, 0x4e, 0x49, 0x54, 0x41, 0x44, 0x41, 0x44, 0x41, 0x5c, 0x31, 0x5c, 0x32,
		0x54, 0x41, 0x54, 0x41, 0x44, 0x41, 0x44, 0x41, 0x5c, 0x33, 0x5c, 0x34, 0x54, 0x41,
		0x54, 0x41, 0x44, 0x41, 0x44, 0x41, 0x5c, 0x35, 0x5c, 0x36, 0x54, 0x41, 0x54, 0x41,
		0x44, 0x41, 0x44, 0x41, 0x5c, 0x37, 0x5c, 0x38, 0x54, 0x41, 0x00, 0xad, 0x00, 0x5c,
		0x7c, 0x91, 0x02, 0x02, 0x00, 0x00, 0x00, 0x05, 0x00, 0xad, 0x07, 0x78, 0x00, 0xad,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x12, 0xe4, 0x64, 0x00, 0xdc, 0x7d, 0x60,
	}
	want := []string{
		"IN1", "IN2", "IN3", "IN4", "IN5", "IN6", "IN7", "IN8",
		"ADAT1", "ADAT2", "ADAT3", "ADAT4", "ADAT5", "ADAT6", "ADAT7", "ADAT8",
	}

	if diff := cmp.Diff(want, ParseLabels(raw)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}
