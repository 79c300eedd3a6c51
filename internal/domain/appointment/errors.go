package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("this time slot is already booked")
	ErrPatientDoubleBooked = errors.New("patient already has an appointment with this doctor on this date")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrDateRequired        = errors.New("date is required")
	ErrTimeRequired        = errors.New("time is required")
	ErrInvalidDuration     = errors.New("appointment duration must be between 5 and 480 minutes")
)
