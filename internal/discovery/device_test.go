package discovery

import (
	"strings"
	"testing"
)

func TestDeviceString(t *testing.T) {
	dev := &Device{
		ID:    "10004b093a",
		Model: "plug",
		IP:    "192.168.1.42",
		Port:  8081,
	}

	got := dev.String()
	if !strings.Contains(got, "10004b093a") {
		t.Errorf("String() = %q, want device ID present", got)
	}
	if !strings.Contains(got, "192.168.1.42:8081") {
		t.Errorf("String() = %q, want address present", got)
	}
	if strings.Contains(got, "outlets") {
		t.Errorf("String() = %q, single-channel device should not mention outlets", got)
	}
}

func TestDeviceStringMultiOutlet(t *testing.T) {
	dev := &Device{
		ID:      "10004b093b",
		Model:   "strip",
		IP:      "192.168.1.43",
		Port:    8081,
		Outlets: 4,
	}

	got := dev.String()
	if !strings.Contains(got, "4 outlets") {
		t.Errorf("String() = %q, want outlet count present", got)
	}
}

func TestDeviceBaseURL(t *testing.T) {
	dev := &Device{IP: "192.168.1.42", Port: 8081}
	if got, want := dev.BaseURL(), "http://192.168.1.42:8081"; got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
}

func TestDeviceGetMetadata(t *testing.T) {
	dev := &Device{
		Metadata: map[string]string{"type": "plug", "apivers": "1"},
	}

	if got, want := dev.GetMetadata("type"), "plug"; got != want {
		t.Errorf("GetMetadata(type) = %q, want %q", got, want)
	}
	if got := dev.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}

	var bare Device
	if got := bare.GetMetadata("type"); got != "" {
		t.Errorf("GetMetadata on nil metadata = %q, want empty", got)
	}
}
