package availability

import (
	"sort"

	"offerbook/internal/domain/booking"
	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/planning"
)

// Scope selects what a check protects: one offer, or every offer of a host.
type Scope interface {
	isCheckScope()
	Label() string
}

type offerScope struct{ offer *offers.Offer }

type hostScope struct{ host offers.HostID }

func (offerScope) isCheckScope() {}
func (hostScope) isCheckScope()  {}

func (offerScope) Label() string { return "offer" }
func (hostScope) Label() string  { return "host" }

// OfferScope checks a single offer. The offer's host is needed to resolve
// host-wide blackouts.
func OfferScope(offer *offers.Offer) Scope { return offerScope{offer: offer} }

// HostScope checks every offer owned by host.
func HostScope(host offers.HostID) Scope { return hostScope{host: host} }

// Target identifies the record being updated so that it does not conflict with itself.
// A nil Target means the record is new.
type Target interface {
	isTarget()
}

type reservationTarget struct{ id booking.ReservationID }

type blackoutTarget struct{ id planning.EntryID }

func (reservationTarget) isTarget() {}
func (blackoutTarget) isTarget()    {}

func ReservationTarget(id booking.ReservationID) Target { return reservationTarget{id: id} }
func BlackoutTarget(id planning.EntryID) Target         { return blackoutTarget{id: id} }

func excludedReservation(t Target) booking.ReservationID {
	if rt, ok := t.(reservationTarget); ok {
		return rt.id
	}
	return ""
}

func excludedEntry(t Target) planning.EntryID {
	if bt, ok := t.(blackoutTarget); ok {
		return bt.id
	}
	return ""
}

func OfferLockKey(id offers.OfferID) string { return "offer:" + string(id) }
func HostLockKey(id offers.HostID) string   { return "host:" + string(id) }

// HostLockKeys returns the host key plus one key per owned offer, sorted.
func HostLockKeys(host offers.HostID, owned []offers.OfferID) []string {
	keys := make([]string, 0, len(owned)+1)
	keys = append(keys, HostLockKey(host))
	for _, id := range owned {
		keys = append(keys, OfferLockKey(id))
	}
	sort.Strings(keys)
	return keys
}
