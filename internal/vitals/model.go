package vitals

import "time"

// Reading is one self-reported vitals sample. Every measurement is
// optional; a reading with none of them is still stored.
type Reading struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patientId"`
	HeartRate   *float64   `json:"heartRate,omitempty"`
	SpO2        *float64   `json:"spo2,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
	BMI         *float64   `json:"bmi,omitempty"`
	RecordedAt  time.Time  `json:"recordedAt"`
}

// SaveRequest is the POST /vitals payload.
type SaveRequest struct {
	PatientID   string   `json:"patientId"`
	HeartRate   *float64 `json:"heartRate"`
	SpO2        *float64 `json:"spo2"`
	Temperature *float64 `json:"temperature"`
	BMI         *float64 `json:"bmi"`
}
