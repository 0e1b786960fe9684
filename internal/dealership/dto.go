package dealership

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/autoyard/autoyard-backend/pkg/db/models"
)

type WorkingHourDTO struct {
	DayOfWeek string `json:"dayOfWeek"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
	IsOpen    bool   `json:"isOpen"`
}

type DealershipDTO struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Address      string           `json:"address"`
	Phone        string           `json:"phone"`
	Email        string           `json:"email"`
	WorkingHours []WorkingHourDTO `json:"workingHours"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// WorkingHourInput is one row of a save request; DayOfWeek is case-insensitive.
type WorkingHourInput struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	OpenTime  string `json:"openTime" validate:"required"`
	CloseTime string `json:"closeTime" validate:"required"`
	IsOpen    bool   `json:"isOpen"`
}

func fromModel(info models.DealershipInfo) DealershipDTO {
	hours := append([]models.WorkingHour(nil), info.WorkingHours...)
	sort.SliceStable(hours, func(i, j int) bool {
		return hours[i].DayOfWeek.Index() < hours[j].DayOfWeek.Index()
	})

	out := DealershipDTO{
		ID:           info.ID,
		Name:         info.Name,
		Address:      info.Address,
		Phone:        info.Phone,
		Email:        info.Email,
		WorkingHours: make([]WorkingHourDTO, 0, len(hours)),
		CreatedAt:    info.CreatedAt,
		UpdatedAt:    info.UpdatedAt,
	}
	for _, h := range hours {
		out.WorkingHours = append(out.WorkingHours, WorkingHourDTO{
			DayOfWeek: h.DayOfWeek.String(),
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			IsOpen:    h.IsOpen,
		})
	}
	return out
}
