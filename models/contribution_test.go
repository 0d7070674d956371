package models

import "testing"

func TestCountsTowardTotal(t *testing.T) {
	t.Parallel()

	if !ContributionPending.CountsTowardTotal() {
		t.Fatalf("pending contributions must count toward the total")
	}
	if !ContributionSuccess.CountsTowardTotal() {
		t.Fatalf("successful contributions must count toward the total")
	}
	if ContributionFailed.CountsTowardTotal() {
		t.Fatalf("failed contributions must not count toward the total")
	}
}

func TestTotalDelta(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		oldStatus ContributionStatus
		oldAmount int64
		newStatus ContributionStatus
		newAmount int64
		want      int64
	}{
		{"pending amount raised", ContributionPending, 100, ContributionPending, 250, 150},
		{"success amount lowered", ContributionSuccess, 100, ContributionSuccess, 40, -60},
		{"failed amount edit is a no-op", ContributionFailed, 100, ContributionFailed, 250, 0},
		{"pending charge fails", ContributionPending, 100, ContributionFailed, 100, -100},
		{"pending charge succeeds", ContributionPending, 100, ContributionSuccess, 100, 0},
		{"failed charge stays failed", ContributionFailed, 100, ContributionFailed, 100, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TotalDelta(tc.oldStatus, tc.oldAmount, tc.newStatus, tc.newAmount)
			if got != tc.want {
				t.Fatalf("TotalDelta(%s, %d, %s, %d) = %d, want %d",
					tc.oldStatus, tc.oldAmount, tc.newStatus, tc.newAmount, got, tc.want)
			}
		})
	}
}

// A failed charge backed out by the webhook and then deleted must not
// be subtracted a second time.
func TestTotalDelta_FailedThenDeleted(t *testing.T) {
	t.Parallel()

	total := int64(0)
	total += 100                                                                         // donation created, pending
	total += TotalDelta(ContributionPending, 100, ContributionFailed, 100)               // webhook: charge failed
	if ContributionFailed.CountsTowardTotal() {                                          // admin deletes the row
		total -= 100
	}
	if total != 0 {
		t.Fatalf("total after fail+delete = %d, want 0", total)
	}
}
