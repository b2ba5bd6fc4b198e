package shipping

import "time"

// TrackingEvent is one entry in a shipment's scan history
type TrackingEvent struct {
	Timestamp time.Time
	// Status is nil when the carrier scan code does not map to a canonical
	// status; the event is still recorded for display
	Status   *ShipmentStatus
	Location string
	Remarks  string
}

// TrackingResponse is the normalized tracking result for one AWB
type TrackingResponse struct {
	AWB             string
	CourierCode     CourierCode
	Status          *ShipmentStatus
	CurrentLocation string
	ExpectedDelivery *time.Time
	DeliveredAt      *time.Time
	// Events is ordered oldest first
	Events []TrackingEvent
	// NDRReason carries the latest failed-attempt reason, if any
	NDRReason string
}

// IsNDR returns true if the current mapped status is a non-delivery report
func (t *TrackingResponse) IsNDR() bool {
	return t.Status != nil && t.Status.IsNDR()
}

// LatestEvent returns the most recent event, or nil if there is none
func (t *TrackingResponse) LatestEvent() *TrackingEvent {
	if len(t.Events) == 0 {
		return nil
	}
	return &t.Events[len(t.Events)-1]
}
