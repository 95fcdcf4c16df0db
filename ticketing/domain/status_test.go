package domain

import "testing"

func TestStatusIsLive(t *testing.T) {
	live := []Status{StatusOpen, StatusPending, StatusGroup, StatusNps, StatusLgpd}
	for _, s := range live {
		if !s.IsLive() {
			t.Errorf("expected %q to be live", s)
		}
	}
	if StatusClosed.IsLive() {
		t.Errorf("closed must not be live")
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusLgpd, StatusPending},
		{StatusLgpd, StatusOpen},
		{StatusPending, StatusOpen},
		{StatusPending, StatusClosed},
		{StatusGroup, StatusOpen},
		{StatusOpen, StatusPending},
		{StatusOpen, StatusNps},
		{StatusOpen, StatusClosed},
		{StatusNps, StatusClosed},
		{StatusClosed, StatusPending}, // reopen
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusClosed, StatusOpen},
		{StatusClosed, StatusNps},
		{StatusNps, StatusOpen},
		{StatusNps, StatusPending},
		{StatusPending, StatusNps},
		{StatusPending, StatusLgpd},
		{StatusOpen, StatusLgpd},
		{StatusGroup, StatusNps},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}
