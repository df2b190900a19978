package enums

// DriverStatus reports a driver's availability.
type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusOnRoute   DriverStatus = "on_route"
	DriverStatusOffDuty   DriverStatus = "off_duty"
)
