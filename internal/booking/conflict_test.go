package booking

import (
	"testing"
	"time"

	"github.com/example/practice-scheduler/internal/interval"
)

func slotAt(t *testing.T, hour int) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2025, time.June, 2, hour, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func TestFindConflicts(t *testing.T) {
	t.Parallel()

	tenStart, tenEnd := slotAt(t, 10)
	elevenStart, elevenEnd := slotAt(t, 11)

	existing := []Booking{
		{ID: "apt-1", ProfessionalID: "prof-1", Start: tenStart, End: tenEnd, Status: StatusRequested},
		{ID: "apt-2", ProfessionalID: "prof-1", Start: elevenStart, End: elevenEnd, Status: StatusConfirmed},
		{ID: "apt-3", ProfessionalID: "prof-2", Start: tenStart, End: tenEnd, Status: StatusConfirmed},
		{ID: "apt-4", ProfessionalID: "prof-1", Start: tenStart, End: tenEnd, Status: StatusCancelled},
	}

	t.Run("requested sibling blocks a new request", func(t *testing.T) {
		t.Parallel()

		candidate := Booking{ProfessionalID: "prof-1", Start: tenStart, End: tenEnd}
		conflicts := FindConflicts(existing, candidate, Status.BlocksRequest)
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %v", conflicts)
		}
		if conflicts[0].WithBookingID != "apt-1" {
			t.Fatalf("expected conflict with apt-1, got %q", conflicts[0].WithBookingID)
		}
	})

	t.Run("requested sibling does not block approval", func(t *testing.T) {
		t.Parallel()

		candidate := Booking{ID: "apt-5", ProfessionalID: "prof-1", Start: tenStart, End: tenEnd}
		conflicts := FindConflicts(existing, candidate, Status.BlocksApproval)
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts against unapproved siblings, got %v", conflicts)
		}
	})

	t.Run("approval re-check excludes the candidate itself", func(t *testing.T) {
		t.Parallel()

		candidate := Booking{ID: "apt-2", ProfessionalID: "prof-1", Start: elevenStart, End: elevenEnd}
		conflicts := FindConflicts(existing, candidate, Status.BlocksApproval)
		if len(conflicts) != 0 {
			t.Fatalf("expected the candidate to be excluded from its own re-check, got %v", conflicts)
		}
	})

	t.Run("other professionals never conflict", func(t *testing.T) {
		t.Parallel()

		candidate := Booking{ProfessionalID: "prof-3", Start: tenStart, End: tenEnd}
		conflicts := FindConflicts(existing, candidate, Status.BlocksRequest)
		if len(conflicts) != 0 {
			t.Fatalf("expected no cross-professional conflicts, got %v", conflicts)
		}
	})

	t.Run("terminal statuses release the slot", func(t *testing.T) {
		t.Parallel()

		candidate := Booking{ProfessionalID: "prof-1", Start: tenStart.Add(30 * time.Minute), End: tenEnd.Add(30 * time.Minute)}
		conflicts := FindConflicts(existing, candidate, Status.BlocksRequest)
		for _, c := range conflicts {
			if c.WithBookingID == "apt-4" {
				t.Fatalf("cancelled booking must not conflict: %v", conflicts)
			}
		}
	})

	t.Run("touching intervals do not conflict", func(t *testing.T) {
		t.Parallel()

		candidate := Booking{ProfessionalID: "prof-1", Start: tenEnd, End: tenEnd.Add(time.Hour)}
		conflicts := FindConflicts(existing, candidate, Status.BlocksApproval)
		if len(conflicts) != 0 {
			t.Fatalf("expected back-to-back bookings to coexist, got %v", conflicts)
		}
	})
}

func TestFilterSlots(t *testing.T) {
	t.Parallel()

	nineStart, nineEnd := slotAt(t, 9)
	tenStart, tenEnd := slotAt(t, 10)
	elevenStart, elevenEnd := slotAt(t, 11)

	slots := []interval.Span{
		{Start: nineStart, End: nineEnd},
		{Start: tenStart, End: tenEnd},
		{Start: elevenStart, End: elevenEnd},
	}

	existing := []Booking{
		{ID: "apt-1", Start: tenStart, End: tenEnd, Status: StatusRequested},
		{ID: "apt-2", Start: elevenStart, End: elevenEnd, Status: StatusRejected},
	}

	kept := FilterSlots(slots, existing)
	if len(kept) != 2 {
		t.Fatalf("expected 2 free slots, got %v", kept)
	}
	if !kept[0].Start.Equal(nineStart) || !kept[1].Start.Equal(elevenStart) {
		t.Fatalf("expected 09:00 and 11:00 to survive, got %v", kept)
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusRequested, StatusApproved, true},
		{StatusRequested, StatusRejected, true},
		{StatusRequested, StatusCancelled, true},
		{StatusRequested, StatusConfirmed, false},
		{StatusApproved, StatusConfirmed, true},
		{StatusApproved, StatusApproved, false},
		{StatusApproved, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusRejected, StatusApproved, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusRejected, StatusCancelled, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatus_Predicates(t *testing.T) {
	t.Parallel()

	if !StatusRequested.BlocksRequest() {
		t.Fatal("a pending request must hold its slot")
	}
	if StatusRequested.BlocksApproval() {
		t.Fatal("a pending request must not block a sibling approval")
	}
	if StatusRejected.BlocksRequest() || StatusCancelled.BlocksRequest() || StatusCompleted.BlocksRequest() {
		t.Fatal("terminal statuses must release the slot")
	}
	if !StatusCompleted.Terminal() || !StatusRejected.Terminal() || !StatusCancelled.Terminal() {
		t.Fatal("completed, rejected and cancelled are terminal")
	}
	if StatusApproved.Terminal() {
		t.Fatal("approved is not terminal")
	}
	if Status("bogus").Valid() {
		t.Fatal("unknown status must not validate")
	}
}
