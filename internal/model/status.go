package model

import (
	"regexp"
	"strings"
)

// OrderStatus is a canonical order lifecycle status. The six progression
// statuses have a defined total order; CANCELED and REJECTED are terminal
// but unordered. Values outside the canonical set carry no forward
// information and never advance a workflow.
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReadyForPickUp OrderStatus = "READY_FOR_PICK_UP"
	StatusInDelivery     OrderStatus = "IN_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCanceled       OrderStatus = "CANCELED"
	StatusRejected       OrderStatus = "REJECTED"
)

// Progression is the linear order lifecycle, lowest first.
var Progression = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusReadyForPickUp,
	StatusInDelivery,
	StatusDelivered,
}

var progressionIndex = func() map[OrderStatus]int {
	m := make(map[OrderStatus]int, len(Progression))
	for i, s := range Progression {
		m[s] = i
	}
	return m
}()

// aliases maps legacy/synonym spellings onto the canonical set.
var aliases = map[OrderStatus]OrderStatus{
	"READY_FOR_PICKUP": StatusReadyForPickUp,
	"READY_TO_PICKUP":  StatusReadyForPickUp,
	"IN_TRANSIT":       StatusInDelivery,
	"ON_THE_WAY":       StatusInDelivery,
	"CANCELLED":        StatusCanceled,
	"COMPLETED":        StatusDelivered,
}

var separators = regexp.MustCompile(`[\s-]+`)

// Normalize maps a raw status string to its canonical form: uppercase,
// runs of whitespace and hyphens collapsed to a single underscore, then
// alias resolution. Empty input returns "" (no change). The result is
// returned even when it is not a member of the canonical set; callers
// must check Known before using it for ordering.
func Normalize(raw string) OrderStatus {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	s := OrderStatus(separators.ReplaceAllString(strings.ToUpper(raw), "_"))
	if canon, ok := aliases[s]; ok {
		return canon
	}
	return s
}

// Index returns the position of s in the progression, or -1 when s is
// terminal-unordered or unknown.
func (s OrderStatus) Index() int {
	if i, ok := progressionIndex[s]; ok {
		return i
	}
	return -1
}

// Known reports whether s is a member of the canonical set.
func (s OrderStatus) Known() bool {
	return s.Index() >= 0 || s == StatusCanceled || s == StatusRejected
}

// Terminal reports whether tracking stops at s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCanceled || s == StatusRejected
}
