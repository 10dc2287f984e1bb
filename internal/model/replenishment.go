package model

import "time"

// ReplenishmentStatus moves forward (en_attente → approuve|rejete) server-side.
// "annule" is written locally after the cancellation endpoint accepted the
// DELETE, pending confirmation on the next fetch.
type ReplenishmentStatus string

const (
	ReplenishmentPending   ReplenishmentStatus = "en_attente"
	ReplenishmentApproved  ReplenishmentStatus = "approuve"
	ReplenishmentRejected  ReplenishmentStatus = "rejete"
	ReplenishmentCancelled ReplenishmentStatus = "annule"
)

// Request priorities.
const (
	PriorityNormal   = "normal"
	PriorityUrgent   = "urgent"
	PriorityCritical = "critical"
)

type ReplenishmentItem struct {
	Product     string `json:"product"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}

type ReplenishmentRequest struct {
	ID          string              `json:"id"`
	Status      ReplenishmentStatus `json:"status"`
	Items       []ReplenishmentItem `json:"items"`
	Priority    string              `json:"priority,omitempty"`
	Comment     string              `json:"comment,omitempty"`
	RequestedBy string              `json:"requested_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	ApprovedAt  *time.Time          `json:"approved_at,omitempty"`
}

// TotalQuantity sums the requested quantities across items.
func (r *ReplenishmentRequest) TotalQuantity() int {
	total := 0
	for _, it := range r.Items {
		total += it.Quantity
	}
	return total
}

// NewReplenishmentRequest is the POST payload for creating a request.
type NewReplenishmentRequest struct {
	Items    []NewReplenishmentItem `json:"items" validate:"required,min=1,dive"`
	Priority string                 `json:"priority,omitempty" validate:"omitempty,oneof=normal urgent critical"`
	Comment  string                 `json:"comment,omitempty"`
}

type NewReplenishmentItem struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// ReplenishmentMetrics is the aggregate from /products/stock-requests/metrics/.
type ReplenishmentMetrics struct {
	PendingRequestsCount        int        `json:"pending_requests_count"`
	CriticalProductsCount       int        `json:"critical_products_count"`
	LastApprovedRequestDate     *time.Time `json:"last_approved_request_date,omitempty"`
	LastApprovedRequestQuantity *int       `json:"last_approved_request_quantity,omitempty"`
}
