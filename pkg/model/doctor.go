package model

import (
	"medibook/internal/availability"
	"time"
)

type Doctor struct {
	ID                 string                `bson:"_id,omitempty" json:"id"`
	UserID             string                `bson:"user_id" json:"user_id"`
	LicenseNumber      string                `bson:"license_number" json:"license_number"`
	Specialization     string                `bson:"specialization" json:"specialization"`
	ExperienceYears    int                   `bson:"experience_years" json:"experience_years"`
	ConsultationFee    float64               `bson:"consultation_fee" json:"consultation_fee"`
	AvailableTimeslots availability.Template `bson:"available_timeslots" json:"available_timeslots"`
	Qualification      string                `bson:"qualification,omitempty" json:"qualification,omitempty"`
	Bio                string                `bson:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt          time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time             `bson:"updated_at" json:"updated_at"`
}

// DoctorProfile is a doctor joined with the owning user account.
type DoctorProfile struct {
	Doctor
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile,omitempty"`
	IsActive bool   `json:"is_active"`
}

type DoctorRegistration struct {
	UserID             string              `json:"user_id" validate:"required,mongodb"`
	LicenseNumber      string              `json:"license_number" validate:"required,min=3,max=20,alphanum,uppercase"`
	Specialization     string              `json:"specialization" validate:"required,min=2,max=100"`
	ExperienceYears    int                 `json:"experience_years" validate:"gte=0,lte=60"`
	ConsultationFee    float64             `json:"consultation_fee" validate:"gte=0,lte=50000"`
	AvailableTimeslots map[string][]string `json:"available_timeslots" validate:"required,min=1,dive,keys,weekday,endkeys,dive,timeslot"`
	Qualification      string              `json:"qualification,omitempty" validate:"max=500"`
	Bio                string              `json:"bio,omitempty" validate:"max=2000"`
}

type ScheduleResponse struct {
	AvailableTimeslots availability.Template `json:"available_timeslots"`
}
