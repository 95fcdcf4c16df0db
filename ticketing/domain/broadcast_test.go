package domain

import "testing"

func TestNewTenantChannel(t *testing.T) {
	if got := NewTenantChannel(42); got != "tenant-42-ticket" {
		t.Fatalf("NewTenantChannel(42) = %q", got)
	}
}

func TestParseTenantChannel(t *testing.T) {
	valid := []string{"tenant-1-ticket", "tenant-9812-ticket"}
	for _, raw := range valid {
		if _, err := ParseTenantChannel(raw); err != nil {
			t.Errorf("ParseTenantChannel(%q) unexpected error: %v", raw, err)
		}
	}

	invalid := []string{
		"",
		"tenant--ticket",
		"tenant-1-tickets",
		"tenant-1-ticket-extra",
		"tenant-abc-ticket",
		"TENANT-1-TICKET",
		"other-1-ticket",
	}
	for _, raw := range invalid {
		if _, err := ParseTenantChannel(raw); err == nil {
			t.Errorf("ParseTenantChannel(%q) expected rejection", raw)
		}
	}
}
