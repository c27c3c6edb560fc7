package track

import "ordertrack/internal/model"

// resolveStatus normalizes raw and falls back to prev, then PENDING,
// when raw carries no recognized status.
func resolveStatus(raw string, prev model.OrderStatus) model.OrderStatus {
	if st := model.Normalize(raw); st.Known() {
		return st
	}
	if prev.Known() {
		return prev
	}
	return model.StatusPending
}

// applyFreshSnapshot folds a fully-fetched order payload into a new
// snapshot: status normalized (previous status wins over PENDING as the
// fallback), workflow ensured and advanced, everything else verbatim
// from incoming. prevWorkflow is nil on begin (workflow reset) and the
// held workflow on hydrate (completed steps preserved).
func applyFreshSnapshot(incoming model.OrderSnapshot, prevStatus model.OrderStatus, prevWorkflow []model.WorkflowStep) model.OrderSnapshot {
	st := resolveStatus(string(incoming.Status), prevStatus)
	out := incoming
	out.Status = st
	out.Workflow = Advance(EnsureWorkflow(prevWorkflow), st)
	return out
}

// mergeSubRecords shallow-merges the hydrate path: incoming wins per
// field, previous fills the gaps on restaurant, delivery and payment.
func mergeSubRecords(prev, incoming model.OrderSnapshot) model.OrderSnapshot {
	out := incoming
	if out.Restaurant.ID == 0 {
		out.Restaurant.ID = prev.Restaurant.ID
	}
	if out.Restaurant.Name == "" {
		out.Restaurant.Name = prev.Restaurant.Name
	}
	if out.Delivery.Address == "" {
		out.Delivery.Address = prev.Delivery.Address
	}
	if out.Delivery.Location == nil {
		out.Delivery.Location = prev.Delivery.Location
	}
	if out.Delivery.SavedAddress == "" {
		out.Delivery.SavedAddress = prev.Delivery.SavedAddress
	}
	if out.Delivery.Courier == nil {
		out.Delivery.Courier = prev.Delivery.Courier
	}
	if out.Payment.Method == "" {
		out.Payment.Method = prev.Payment.Method
	}
	if !out.Payment.Subtotal.Set {
		out.Payment.Subtotal = prev.Payment.Subtotal
	}
	if !out.Payment.Extras.Set {
		out.Payment.Extras = prev.Payment.Extras
	}
	if !out.Payment.Total.Set {
		out.Payment.Total = prev.Payment.Total
	}
	if len(out.Items) == 0 {
		out.Items = prev.Items
	}
	return out
}

// applyPushUpdate overlays a lightweight MESSAGE payload onto the held
// snapshot. When prev is nil a minimal snapshot is synthesized from the
// update's fields. Unset monetary values keep the previous amount.
func applyPushUpdate(prev *model.OrderSnapshot, upd model.PushUpdate) model.OrderSnapshot {
	var out model.OrderSnapshot
	var prevStatus model.OrderStatus
	var prevWorkflow []model.WorkflowStep
	if prev != nil {
		out = *prev
		prevStatus = prev.Status
		prevWorkflow = prev.Workflow
	} else {
		out.OrderID = upd.OrderID
	}
	st := resolveStatus(upd.Status, prevStatus)
	out.Status = st
	out.Workflow = Advance(EnsureWorkflow(prevWorkflow), st)
	if upd.RestaurantID != 0 {
		out.Restaurant.ID = upd.RestaurantID
	}
	if upd.RestaurantName != "" {
		out.Restaurant.Name = upd.RestaurantName
	}
	if upd.Address != "" {
		out.Delivery.Address = upd.Address
	}
	if upd.Location != nil {
		out.Delivery.Location = upd.Location
	}
	if upd.SavedAddress != "" {
		out.Delivery.SavedAddress = upd.SavedAddress
	}
	if upd.Total.Set {
		out.Payment.Total = upd.Total
	}
	return out
}
