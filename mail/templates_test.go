package mail

import (
	"strings"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{2500, "25.00"},
		{123456, "1234.56"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.minor); got != tc.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tc.minor, got, tc.want)
		}
	}
}

func TestWelcomeEmail_ContainsCredentials(t *testing.T) {
	t.Parallel()

	subject, body := WelcomeEmail("Jane Doe", "jane@example.com", "default0712345678", "https://app.example.com/login")
	if subject == "" {
		t.Fatalf("empty subject")
	}
	for _, want := range []string{"Jane Doe", "jane@example.com", "default0712345678", "https://app.example.com/login"} {
		if !strings.Contains(body, want) {
			t.Fatalf("welcome body missing %q", want)
		}
	}
}

func TestContributionReceipt_FormatsAmount(t *testing.T) {
	t.Parallel()

	_, body := ContributionReceipt("Sam", "Dinner for Hope", 2500)
	if !strings.Contains(body, "25.00") {
		t.Fatalf("receipt body missing formatted amount: %s", body)
	}
	if !strings.Contains(body, "Dinner for Hope") {
		t.Fatalf("receipt body missing event title")
	}
}

func TestTemplates_EscapeHTML(t *testing.T) {
	t.Parallel()

	_, body := InviteEmail("<script>alert(1)</script>", "Event & Friends", "https://x")
	if strings.Contains(body, "<script>") {
		t.Fatalf("host name was not escaped: %s", body)
	}
	if !strings.Contains(body, "Event &amp; Friends") {
		t.Fatalf("event title was not escaped: %s", body)
	}
}

func TestNotificationEmail_ReminderBody(t *testing.T) {
	t.Parallel()

	_, body := NotificationEmail("reminder", "Jo", "Picnic", "starts at noon")
	for _, want := range []string{"Jo", "Picnic", "starts at noon"} {
		if !strings.Contains(body, want) {
			t.Fatalf("reminder body missing %q: %s", want, body)
		}
	}
	if strings.Contains(body, "Location:") {
		t.Fatalf("reminder notification must not render an empty location: %s", body)
	}
}

func TestNotificationEmail_KnownKinds(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"invite", "reminder", "contribution", "disbursement"} {
		subject, body := NotificationEmail(kind, "Jo", "Picnic", "hello")
		if subject == "" || body == "" {
			t.Fatalf("empty output for kind %q", kind)
		}
	}
}
