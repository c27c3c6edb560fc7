package track

import (
	"testing"

	"ordertrack/internal/model"
)

func TestEnsureWorkflowBlueprint(t *testing.T) {
	steps := EnsureWorkflow(nil)
	if len(steps) != 6 {
		t.Fatalf("got %d steps, want 6", len(steps))
	}
	for i, st := range steps {
		if st.Completed || st.Status != model.StepPending {
			t.Fatalf("step %d not pending: %+v", i, st)
		}
		if st.Label == "" || st.Description == "" {
			t.Fatalf("step %d missing label/description", i)
		}
	}
	if steps[0].Step != model.StatusPending || steps[5].Step != model.StatusDelivered {
		t.Fatalf("blueprint out of order: %+v", steps)
	}
}

func TestEnsureWorkflowRenormalizesAliases(t *testing.T) {
	persisted := []model.WorkflowStep{
		{Step: "ready_for_pickup", Completed: true, Status: model.StepCompleted},
	}
	steps := EnsureWorkflow(persisted)
	if steps[0].Step != model.StatusReadyForPickUp {
		t.Fatalf("alias not resolved: %q", steps[0].Step)
	}
	if steps[0].Label == "" {
		t.Fatal("missing label not defaulted from blueprint")
	}
}

func TestAdvanceMarksExactlyOneActive(t *testing.T) {
	steps := Advance(EnsureWorkflow(nil), model.StatusPreparing)
	active := 0
	for i, st := range steps {
		switch {
		case i < 2:
			if !st.Completed || st.Status != model.StepCompleted {
				t.Fatalf("step %d should be completed: %+v", i, st)
			}
		case i == 2:
			if st.Completed || st.Status != string(model.StatusPreparing) {
				t.Fatalf("step 2 should be active: %+v", st)
			}
		default:
			if st.Completed || st.Status != model.StepPending {
				t.Fatalf("step %d should be pending: %+v", i, st)
			}
		}
		if st.Status != model.StepPending && st.Status != model.StepCompleted {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("got %d active steps, want 1", active)
	}
}

func TestAdvanceMonotonic(t *testing.T) {
	// out-of-order, duplicated and unknown statuses must never revert a
	// completed step
	sequence := []model.OrderStatus{
		model.StatusAccepted,
		model.StatusInDelivery,
		model.StatusPreparing, // late, lower
		model.StatusInDelivery,
		"WEIRD_STATUS",
		model.StatusPending,
	}
	steps := EnsureWorkflow(nil)
	completed := make([]bool, len(steps))
	for _, st := range sequence {
		steps = Advance(steps, st)
		for i := range steps {
			if completed[i] && !steps[i].Completed {
				t.Fatalf("step %d regressed after %q", i, st)
			}
			completed[i] = steps[i].Completed
		}
	}
	// IN_DELIVERY was the high-water mark: first four steps completed
	for i := 0; i < 4; i++ {
		if !steps[i].Completed {
			t.Fatalf("step %d should remain completed: %+v", i, steps[i])
		}
	}
}

func TestAdvanceUnknownStatusNoOp(t *testing.T) {
	before := Advance(EnsureWorkflow(nil), model.StatusAccepted)
	after := Advance(before, "SOMETHING_ELSE")
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("unknown status changed step %d: %+v -> %+v", i, before[i], after[i])
		}
	}
}
