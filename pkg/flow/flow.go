// Package flow defines the order-execution contracts shared between a
// Gateway (the LP simulator) and a Strategy: sides, time-in-force, terminal
// statuses, and the OrderSender/OrderStateObserver/Gateway interfaces.
package flow

import "github.com/rivermark-labs/marketsim/pkg/symbology"

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

// Sign converts a Side to its integer sign, used when comparing a limit
// price against the top of book.
func (s Side) Sign() int {
	if s == Sell {
		return -1
	}
	return 1
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "<unknown>"
	}
}

// TIF is an order's time-in-force policy. The Gateway only accepts IOC.
type TIF int

const (
	GTC TIF = iota
	IOC
)

func (t TIF) String() string {
	switch t {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	default:
		return "<unknown>"
	}
}

// DoneStatus is the terminal state of an order.
type DoneStatus int

const (
	Done DoneStatus = iota
	Rejected
	InternalReject
)

func (d DoneStatus) String() string {
	switch d {
	case Done:
		return "Done"
	case Rejected:
		return "Rejected"
	case InternalReject:
		return "InternalReject"
	default:
		return "<unknown>"
	}
}

// OrderId uniquely identifies an order within a single Gateway instance.
type OrderId uint64

// Price and Quantity are plain floats, not fixed-point: the aggression and
// NOP-check logic in pkg/gateway depends on IEEE-754 NaN propagation to
// represent "no quote" and "unresolvable fair price" (spec.md §4.4.2,
// §4.5) — see DESIGN.md for why a decimal type cannot serve this concern.
type (
	Price    = float64
	Quantity = float64
)

// Position is a signed real quantity of one Asset.
type Position = float64

// OrderStateObserver receives lifecycle notifications for orders sent
// through an OrderSender it registered with.
type OrderStateObserver interface {
	// OnAck fires synchronously once the order is processed after the
	// inbound delay, before validation or matching.
	OnAck(symbol symbology.Symbol, orderId OrderId, side Side, price Price, qty Quantity, tif TIF)
	// OnFill fires once per execution. dealt is the signed base-asset
	// quantity, contra the signed quote-asset quantity.
	OnFill(symbol symbology.Symbol, orderId OrderId, dealt, contra Quantity)
	// OnTerminated fires exactly once per order, after OnFill if any.
	OnTerminated(symbol symbology.Symbol, orderId OrderId, status DoneStatus)
}

// OrderSender sends orders on a single (symbol, observer) binding.
type OrderSender interface {
	// SendOrder returns a fresh OrderId synchronously; acknowledgment,
	// fills and termination are delivered asynchronously through the bound
	// OrderStateObserver.
	SendOrder(side Side, price Price, qty Quantity, tif TIF) OrderId
}

// Gateway represents a single exchange or venue: it hands out an
// OrderSender bound to a (symbol, observer) pair, memoized for the
// Gateway's lifetime.
type Gateway interface {
	OrderSender(symbol symbology.Symbol, observer OrderStateObserver) OrderSender
}
