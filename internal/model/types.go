package model

// Core domain types for the order tracking client.

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Restaurant identifies the restaurant an order belongs to.
type Restaurant struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Courier is the delivery person assigned to an order, when known.
type Courier struct {
	Name   string  `json:"name,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// Delivery holds the destination and courier details of an order.
type Delivery struct {
	Address      string    `json:"address,omitempty"`
	Location     *GeoPoint `json:"location,omitempty"`
	SavedAddress string    `json:"savedAddress,omitempty"`
	Courier      *Courier  `json:"courier,omitempty"`
}

// Payment holds the payment method and monetary totals of an order.
type Payment struct {
	Method   string `json:"method,omitempty"`
	Subtotal Money  `json:"subtotal,omitempty"`
	Extras   Money  `json:"extras,omitempty"`
	Total    Money  `json:"total,omitempty"`
}

// OrderItem is one line item of an order.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity,omitempty"`
	Price    Money  `json:"price,omitempty"`
}

// WorkflowStep is one stage of the six-stage delivery lifecycle used to
// render progress. Status is StepPending, StepCompleted, or the name of
// the currently active OrderStatus.
type WorkflowStep struct {
	Step        OrderStatus `json:"step"`
	Label       string      `json:"label,omitempty"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status"`
	Completed   bool        `json:"completed"`
}

const (
	StepPending   = "PENDING"
	StepCompleted = "COMPLETED"
)

// OrderSnapshot is the root aggregate held by a tracking session.
type OrderSnapshot struct {
	OrderID    int64          `json:"orderId"`
	Restaurant Restaurant     `json:"restaurant,omitempty"`
	Status     OrderStatus    `json:"status,omitempty"`
	Delivery   Delivery       `json:"delivery,omitempty"`
	Payment    Payment        `json:"payment,omitempty"`
	Items      []OrderItem    `json:"items,omitempty"`
	Workflow   []WorkflowStep `json:"workflow,omitempty"`
}

// PushUpdate is the narrow payload carried by a MESSAGE frame. It is
// consumed immediately into a merge; only the most recent one for the
// active order is retained.
type PushUpdate struct {
	OrderID        int64     `json:"orderId"`
	Status         string    `json:"status,omitempty"`
	RestaurantID   int64     `json:"restaurantId,omitempty"`
	RestaurantName string    `json:"restaurantName,omitempty"`
	Address        string    `json:"address,omitempty"`
	Location       *GeoPoint `json:"location,omitempty"`
	SavedAddress   string    `json:"savedAddress,omitempty"`
	Total          Money     `json:"total,omitempty"`
}

// ConnState reports the lifecycle phase of the push connection.
type ConnState string

const (
	ConnIdle       ConnState = "idle"
	ConnConnecting ConnState = "connecting"
	ConnConnected  ConnState = "connected"
	ConnError      ConnState = "error"
)
