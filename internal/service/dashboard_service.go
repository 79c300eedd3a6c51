package service

import (
	"context"
	"fmt"
	"time"

	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/doctor"
	"github.com/careops/hms-api/internal/domain/patient"
)

type DashboardStats struct {
	TotalPatients        int64 `json:"totalPatients"`
	TotalDoctors         int64 `json:"totalDoctors"`
	TotalAppointments    int64 `json:"totalAppointments"`
	UpcomingAppointments int64 `json:"upcomingAppointments"`
}

type DashboardService struct {
	patients     patient.Repository
	doctors      doctor.Repository
	appointments appointment.Repository
}

func NewDashboardService(patients patient.Repository, doctors doctor.Repository, appointments appointment.Repository) *DashboardService {
	return &DashboardService{patients: patients, doctors: doctors, appointments: appointments}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	var err error

	if out.TotalPatients, err = s.patients.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	if out.TotalDoctors, err = s.doctors.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting doctors: %w", err)
	}
	if out.TotalAppointments, err = s.appointments.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}
	if out.UpcomingAppointments, err = s.appointments.CountUpcoming(ctx, time.Now()); err != nil {
		return nil, fmt.Errorf("counting upcoming appointments: %w", err)
	}
	return &out, nil
}
