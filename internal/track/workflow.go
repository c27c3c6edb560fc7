package track

import "ordertrack/internal/model"

// blueprint is the fixed six-step delivery lifecycle that seeds any
// order without a workflow.
var blueprint = []model.WorkflowStep{
	{Step: model.StatusPending, Label: "Order placed", Description: "Waiting for the restaurant to confirm"},
	{Step: model.StatusAccepted, Label: "Order accepted", Description: "The restaurant confirmed your order"},
	{Step: model.StatusPreparing, Label: "Preparing", Description: "Your food is being prepared"},
	{Step: model.StatusReadyForPickUp, Label: "Ready for pick-up", Description: "Waiting for a courier"},
	{Step: model.StatusInDelivery, Label: "On its way", Description: "The courier is heading to you"},
	{Step: model.StatusDelivered, Label: "Delivered", Description: "Enjoy your meal"},
}

// EnsureWorkflow returns a usable step list: the blueprint when steps is
// empty, otherwise a copy with each step id re-normalized (persisted
// data may have used an alias) and missing labels/descriptions filled
// from the blueprint at that index.
func EnsureWorkflow(steps []model.WorkflowStep) []model.WorkflowStep {
	if len(steps) == 0 {
		out := make([]model.WorkflowStep, len(blueprint))
		copy(out, blueprint)
		for i := range out {
			out[i].Status = model.StepPending
		}
		return out
	}
	out := make([]model.WorkflowStep, len(steps))
	copy(out, steps)
	for i := range out {
		out[i].Step = model.Normalize(string(out[i].Step))
		if i < len(blueprint) {
			if out[i].Label == "" {
				out[i].Label = blueprint[i].Label
			}
			if out[i].Description == "" {
				out[i].Description = blueprint[i].Description
			}
		}
		if out[i].Status == "" {
			out[i].Status = model.StepPending
		}
	}
	return out
}

// Advance folds a canonical status into the step list. Steps strictly
// before the status index complete; the first not-yet-completed step at
// the status index becomes the single active step; later steps stay
// pending. A step once completed never reverts, so replaying an equal
// or lower status is a no-op on progress. Statuses outside the
// progression return steps unchanged.
func Advance(steps []model.WorkflowStep, status model.OrderStatus) []model.WorkflowStep {
	target := status.Index()
	if target < 0 {
		return steps
	}
	out := make([]model.WorkflowStep, len(steps))
	copy(out, steps)
	activeSet := false
	for i := range out {
		idx := out[i].Step.Index()
		switch {
		case out[i].Completed:
			out[i].Status = model.StepCompleted
		case idx >= 0 && idx < target:
			out[i].Completed = true
			out[i].Status = model.StepCompleted
		case idx == target && !activeSet:
			out[i].Status = string(status)
			activeSet = true
		default:
			out[i].Status = model.StepPending
		}
	}
	return out
}
