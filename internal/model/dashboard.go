package model

// DoctorDashboard is the doctor home-screen summary. Either every count is
// real or every count is zero; a half-populated dashboard is never returned.
type DoctorDashboard struct {
	ActivePatients      int `json:"active_patients"`
	PendingLabTests     int `json:"pending_lab_tests"`
	PendingOverrides    int `json:"pending_overrides"`
	RecentPrescriptions int `json:"recent_prescriptions"`
}

// ResponsibleDashboard is the responsible-party summary across all followed
// patients.
type ResponsibleDashboard struct {
	Patients             int `json:"patients"`
	PendingLabTests      int `json:"pending_lab_tests"`
	RecentPrescriptions  int `json:"recent_prescriptions"`
	UpcomingAppointments int `json:"upcoming_appointments"`
}
