package shipping

// ShipmentStatus is the canonical shipment lifecycle status shared by every
// carrier integration. Each carrier maps its own status vocabulary onto this
// set; codes that do not map stay as "no change" (a nil *ShipmentStatus).
type ShipmentStatus string

const (
	// StatusCreated indicates the shipment has been created locally
	StatusCreated ShipmentStatus = "CREATED"
	// StatusManifested indicates the shipment is manifested with the carrier
	StatusManifested ShipmentStatus = "MANIFESTED"
	// StatusPickedUp indicates the carrier has collected the package
	StatusPickedUp ShipmentStatus = "PICKED_UP"
	// StatusInTransit indicates the package is moving through the network
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	// StatusOutForDelivery indicates the package is out for final delivery
	StatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	// StatusDelivered indicates successful delivery
	StatusDelivered ShipmentStatus = "DELIVERED"
	// StatusDeliveryFailed indicates a failed delivery attempt (NDR)
	StatusDeliveryFailed ShipmentStatus = "DELIVERY_FAILED"
	// StatusRTOInitiated indicates the package is being returned to origin
	StatusRTOInitiated ShipmentStatus = "RTO_INITIATED"
	// StatusRTODelivered indicates the return reached the sender
	StatusRTODelivered ShipmentStatus = "RTO_DELIVERED"
	// StatusLost indicates the carrier reported the package lost
	StatusLost ShipmentStatus = "LOST"
	// StatusCancelled indicates the shipment was cancelled
	StatusCancelled ShipmentStatus = "CANCELLED"
)

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a member of the canonical set
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case StatusCreated, StatusManifested, StatusPickedUp, StatusInTransit,
		StatusOutForDelivery, StatusDelivered, StatusDeliveryFailed,
		StatusRTOInitiated, StatusRTODelivered, StatusLost, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no further status changes are expected
func (s ShipmentStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusRTODelivered, StatusLost, StatusCancelled:
		return true
	}
	return false
}

// IsNDR returns true if the status represents a non-delivery report
func (s ShipmentStatus) IsNDR() bool {
	return s == StatusDeliveryFailed
}

// IsRTO returns true if the status belongs to the return-to-origin branch
func (s ShipmentStatus) IsRTO() bool {
	return s == StatusRTOInitiated || s == StatusRTODelivered
}

// StatusPtr returns a pointer to the given status. Mapping tables use it to
// distinguish a mapped status from "no change" (nil).
func StatusPtr(s ShipmentStatus) *ShipmentStatus {
	return &s
}
