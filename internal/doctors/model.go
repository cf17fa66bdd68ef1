package doctors

// Doctor is a bookable practitioner in the directory.
type Doctor struct {
	ID              string   `json:"id"`
	ClerkID         string   `json:"clerkId,omitempty"`
	Name            string   `json:"name"`
	Specialty       string   `json:"specialty"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	LicenseNumber   string   `json:"licenseNumber,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	Education       string   `json:"education,omitempty"`
	About           string   `json:"about,omitempty"`
	Languages       []string `json:"languages"`
	Availability    []string `json:"availability"`
	ConsultationFee float64  `json:"consultationFee"`
	Rating          float64  `json:"rating"`
	TotalReviews    int      `json:"totalReviews"`
	Image           string   `json:"image,omitempty"`
	Status          string   `json:"status"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Filter narrows directory listings. Specialty "all" (or empty) matches
// every specialty; Search matches name or specialty, case-insensitively.
type Filter struct {
	Specialty string
	Search    string
}
