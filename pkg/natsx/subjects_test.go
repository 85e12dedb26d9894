package natsx

import (
	"errors"
	"testing"
)

func TestIsValidToken(t *testing.T) {
	testCases := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid lowercase", "bridge", true},
		{"valid with numbers", "gtm2", true},
		{"valid with underscore", "log_custom_event", true},
		{"valid single char", "a", true},
		{"invalid with uppercase", "GTM", false},
		{"invalid with dot", "tag.fired", false},
		{"invalid with dash", "gtm-abc123", false},
		{"invalid with space", "tag fired", false},
		{"empty string", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidToken(tc.token); got != tc.want {
				t.Errorf("IsValidToken(%q) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestBuildSubject(t *testing.T) {
	testCases := []struct {
		name        string
		source      string
		class       string
		typ         string
		id          string
		action      string
		wantSubject string
		wantErr     error
	}{
		{"full valid subject", "gtm", "events", "tag", "container_1", "fired", "gtm.events.tag.container_1.fired", nil},
		{"valid without optional", "bridge", "commands", "braze", "", "", "bridge.commands.braze", nil},
		{"valid with action, no id", "bridge", "commands", "braze", "", "change_user", "bridge.commands.braze.change_user", nil},
		{"invalid source", "Invalid.Source", "events", "tag", "", "", "", ErrInvalidToken},
		{"invalid class", "gtm", "invalidclass", "tag", "", "", "", ErrInvalidClass},
		{"invalid type", "gtm", "events", "Tag", "", "", "", ErrInvalidToken},
		{"invalid id", "gtm", "events", "tag", "GTM-XYZ", "", "", ErrInvalidToken},
		{"invalid action", "gtm", "events", "tag", "c1", "Fired", "", ErrInvalidToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildSubject(tc.source, tc.class, tc.typ, tc.id, tc.action)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("BuildSubject() unexpected error = %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("BuildSubject() error = %v, want %v", err, tc.wantErr)
			}
			if got != tc.wantSubject {
				t.Errorf("BuildSubject() = %v, want %v", got, tc.wantSubject)
			}
		})
	}
}

func TestCallSubject(t *testing.T) {
	got, err := CallSubject("bridge", "log_purchase")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "bridge.commands.braze.log_purchase" {
		t.Errorf("CallSubject() = %q", got)
	}

	if _, err := CallSubject("bridge", "logPurchase"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestBuildDLQSubject(t *testing.T) {
	testCases := []struct {
		name         string
		streamName   string
		consumerName string
		wantSubject  string
		wantErr      error
	}{
		{"valid names", "gtm_tags", "bridge", "dlq.gtm_tags.bridge", nil},
		{"invalid stream name", "gtm-tags", "bridge", "", ErrInvalidToken},
		{"invalid consumer name", "gtm_tags", "bad.consumer", "", ErrInvalidToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildDLQSubject(tc.streamName, tc.consumerName)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("BuildDLQSubject() unexpected error = %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("BuildDLQSubject() error = %v, want %v", err, tc.wantErr)
			}
			if got != tc.wantSubject {
				t.Errorf("BuildDLQSubject() = %v, want %v", got, tc.wantSubject)
			}
		})
	}
}
