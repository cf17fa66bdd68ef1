package doctors

import (
	"context"
	"fmt"
)

// SeedDoctors is the starter directory. The memory backend loads it at
// startup; Postgres deployments load it explicitly with `medibot-seed`.
var SeedDoctors = []Doctor{
	{
		ID:              "1",
		Name:            "Dr. Sarah Johnson",
		Specialty:       "General Medicine",
		Email:           "sarah.johnson@medibot.com",
		Phone:           "+1 (555) 123-4567",
		LicenseNumber:   "MD123456",
		Experience:      "8 years",
		Education:       "MD from Harvard Medical School",
		About:           "Dr. Sarah Johnson is a dedicated general practitioner with over 8 years of experience in primary care. She specializes in preventive medicine, chronic disease management, and patient education.",
		Languages:       []string{"English", "Spanish"},
		Availability:    []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		ConsultationFee: 150,
		Rating:          4.8,
		TotalReviews:    245,
		Image:           "/placeholder-user.jpg",
		Status:          StatusActive,
	},
	{
		ID:              "2",
		Name:            "Dr. Michael Chen",
		Specialty:       "Cardiology",
		Email:           "michael.chen@medibot.com",
		Phone:           "+1 (555) 234-5678",
		LicenseNumber:   "MD234567",
		Experience:      "12 years",
		Education:       "MD from Johns Hopkins University",
		About:           "Dr. Michael Chen is a board-certified cardiologist with extensive experience in treating heart conditions. He specializes in interventional cardiology, heart disease prevention, and cardiac rehabilitation.",
		Languages:       []string{"English", "Mandarin"},
		Availability:    []string{"Monday", "Wednesday", "Friday"},
		ConsultationFee: 250,
		Rating:          4.9,
		TotalReviews:    189,
		Image:           "/placeholder-user.jpg",
		Status:          StatusActive,
	},
	{
		ID:              "3",
		Name:            "Dr. Emily Rodriguez",
		Specialty:       "Pediatrics",
		Email:           "emily.rodriguez@medibot.com",
		Phone:           "+1 (555) 345-6789",
		LicenseNumber:   "MD345678",
		Experience:      "10 years",
		Education:       "MD from Stanford University",
		About:           "Dr. Emily Rodriguez is a compassionate pediatrician who has been caring for children and adolescents for over 10 years. She specializes in developmental pediatrics, childhood immunizations, and adolescent medicine.",
		Languages:       []string{"English", "Spanish"},
		Availability:    []string{"Tuesday", "Thursday", "Saturday"},
		ConsultationFee: 180,
		Rating:          4.7,
		TotalReviews:    156,
		Image:           "/placeholder-user.jpg",
		Status:          StatusActive,
	},
	{
		ID:              "4",
		Name:            "Dr. David Wilson",
		Specialty:       "Dermatology",
		Email:           "david.wilson@medibot.com",
		Phone:           "+1 (555) 456-7890",
		LicenseNumber:   "MD456789",
		Experience:      "15 years",
		Education:       "MD from UCLA Medical School",
		About:           "Dr. David Wilson is a renowned dermatologist with 15 years of experience in treating skin conditions. He specializes in medical dermatology, cosmetic procedures, and skin cancer detection.",
		Languages:       []string{"English"},
		Availability:    []string{"Monday", "Tuesday", "Thursday", "Friday"},
		ConsultationFee: 200,
		Rating:          4.6,
		TotalReviews:    203,
		Image:           "/placeholder-user.jpg",
		Status:          StatusActive,
	},
	{
		ID:              "5",
		Name:            "Dr. Lisa Thompson",
		Specialty:       "Psychiatry",
		Email:           "lisa.thompson@medibot.com",
		Phone:           "+1 (555) 567-8901",
		LicenseNumber:   "MD567890",
		Experience:      "9 years",
		Education:       "MD from Yale University",
		About:           "Dr. Lisa Thompson is a compassionate psychiatrist specializing in anxiety disorders, depression, and cognitive behavioral therapy.",
		Languages:       []string{"English", "French"},
		Availability:    []string{"Monday", "Wednesday", "Thursday", "Friday"},
		ConsultationFee: 220,
		Rating:          4.8,
		TotalReviews:    167,
		Image:           "/placeholder-user.jpg",
		Status:          StatusActive,
	},
}

// Seed upserts the starter directory into repo.
func Seed(ctx context.Context, repo Repository) error {
	for i := range SeedDoctors {
		d := SeedDoctors[i]
		if err := repo.Upsert(ctx, &d); err != nil {
			return fmt.Errorf("doctors: seeding %s: %w", d.ID, err)
		}
	}
	return nil
}
