package orders

import (
	"strings"

	"github.com/ariefcatur/go-storefront-orders/internal/apperr"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// validNext is the customer-facing lifecycle. Admin status updates are not
// checked against it.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(validNext[s]) == 0
}

// ParseStatus accepts only the five known states.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		names := make([]string, len(allStatuses))
		for i, st := range allStatuses {
			names[i] = string(st)
		}
		return "", apperr.New(apperr.KindInvalidInput, "invalid status %q, must be one of: %s", raw, strings.Join(names, ", "))
	}
	return s, nil
}

// cancellable lists the states CancelOrder may leave from.
func cancellable() []Status {
	var out []Status
	for _, s := range allStatuses {
		if CanTransition(s, StatusCancelled) {
			out = append(out, s)
		}
	}
	return out
}
