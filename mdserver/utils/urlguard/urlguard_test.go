package urlguard

import (
	"errors"
	"testing"
)

func TestValidateURLSchemes(t *testing.T) {
	policy := Policy{AllowLocalhost: true}

	if err := ValidateURL("https://example.com/page", policy); err != nil {
		t.Errorf("expected https url to pass, got %v", err)
	}
	if err := ValidateURL("ftp://example.com/file", policy); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL for ftp scheme, got %v", err)
	}
	if err := ValidateURL("file:///etc/passwd", policy); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL for file scheme, got %v", err)
	}
	if err := ValidateURL("not a url at all", policy); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL for garbage, got %v", err)
	}
}

func TestValidateURLLocalhost(t *testing.T) {
	open := Policy{AllowLocalhost: true}
	closed := Policy{AllowLocalhost: false}

	for _, u := range []string{"http://localhost:8080/x", "http://127.0.0.1/x", "http://[::1]/x"} {
		if err := ValidateURL(u, open); err != nil {
			t.Errorf("%s: expected pass with localhost allowed, got %v", u, err)
		}
		if err := ValidateURL(u, closed); !errors.Is(err, ErrBlocked) {
			t.Errorf("%s: expected ErrBlocked with localhost denied, got %v", u, err)
		}
	}
}

func TestValidateURLPrivateRanges(t *testing.T) {
	policy := Policy{AllowLocalhost: true, AllowPrivateNetworks: false}

	for _, u := range []string{
		"http://10.0.0.5/admin",
		"http://192.168.1.1/",
		"http://172.16.0.1/",
		"http://169.254.169.254/latest/meta-data/",
	} {
		if err := ValidateURL(u, policy); !errors.Is(err, ErrBlocked) {
			t.Errorf("%s: expected ErrBlocked, got %v", u, err)
		}
	}

	relaxed := Policy{AllowLocalhost: true, AllowPrivateNetworks: true}
	if err := ValidateURL("http://10.0.0.5/admin", relaxed); err != nil {
		t.Errorf("expected private address to pass with relaxed policy, got %v", err)
	}
}

func TestValidateURLPublicIP(t *testing.T) {
	policy := Policy{}
	if err := ValidateURL("http://93.184.216.34/", policy); err != nil {
		t.Errorf("expected public IP to pass, got %v", err)
	}
}
