package models

import "testing"

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from EventStatus
		to   EventStatus
		want bool
	}{
		{"upcoming to ongoing", StatusUpcoming, StatusOngoing, true},
		{"upcoming to story capture", StatusUpcoming, StatusStoryCapture, true},
		{"upcoming to cancelled", StatusUpcoming, StatusCancelled, true},
		{"upcoming to completed skips ongoing", StatusUpcoming, StatusCompleted, false},
		{"ongoing to completed", StatusOngoing, StatusCompleted, true},
		{"story capture to voting", StatusStoryCapture, StatusVoting, true},
		{"voting to completed", StatusVoting, StatusCompleted, true},
		{"voting back to story capture", StatusVoting, StatusStoryCapture, false},
		{"completed is terminal", StatusCompleted, StatusUpcoming, false},
		{"cancelled is terminal", StatusCancelled, StatusUpcoming, false},
		{"self transition rejected", StatusUpcoming, StatusUpcoming, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestTerminalStatesHaveNoEdges(t *testing.T) {
	t.Parallel()

	for _, terminal := range []EventStatus{StatusCompleted, StatusCancelled} {
		for _, to := range []EventStatus{StatusUpcoming, StatusOngoing, StatusStoryCapture, StatusVoting, StatusCompleted, StatusCancelled} {
			if CanTransition(terminal, to) {
				t.Fatalf("terminal state %s allows transition to %s", terminal, to)
			}
		}
	}
}

func TestParseEventStatus(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"upcoming", "ongoing", "story_capture", "voting", "completed", "cancelled"} {
		if _, err := ParseEventStatus(valid); err != nil {
			t.Fatalf("ParseEventStatus(%q) error: %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "UPCOMING", "deleted", "draft"} {
		if _, err := ParseEventStatus(invalid); err == nil {
			t.Fatalf("ParseEventStatus(%q) accepted an unknown status", invalid)
		}
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"admin", "host", "participant"} {
		if _, err := ParseRole(valid); err != nil {
			t.Fatalf("ParseRole(%q) error: %v", valid, err)
		}
	}
	if _, err := ParseRole("Participant"); err == nil {
		t.Fatalf("ParseRole must reject case variants")
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatalf("ParseRole must reject unknown roles")
	}
}

func TestParseNotificationType(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"invite", "reminder", "contribution", "disbursement"} {
		if _, err := ParseNotificationType(valid); err != nil {
			t.Fatalf("ParseNotificationType(%q) error: %v", valid, err)
		}
	}
	if _, err := ParseNotificationType("welcome"); err == nil {
		t.Fatalf("ParseNotificationType must reject unknown kinds")
	}
}
