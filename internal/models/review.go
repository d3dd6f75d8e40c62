package models

import (
	"time"

	"gorm.io/gorm"
)

// MealTime classifies which meal a review pertains to.
type MealTime string

// Canonical meal-time values. This is the single enumeration shared by every
// producer and consumer of the field.
const (
	MealTimeBreakfast MealTime = "Breakfast"
	MealTimeLunch     MealTime = "Lunch"
	MealTimeDinner    MealTime = "Dinner"
	MealTimeSnacks    MealTime = "Snacks"
	MealTimeOther     MealTime = "Other"
)

// MealTimes returns the canonical meal-time values in display order.
func MealTimes() []MealTime {
	return []MealTime{
		MealTimeBreakfast,
		MealTimeLunch,
		MealTimeDinner,
		MealTimeSnacks,
		MealTimeOther,
	}
}

// Valid reports whether m is one of the canonical meal-time values.
func (m MealTime) Valid() bool {
	switch m {
	case MealTimeBreakfast, MealTimeLunch, MealTimeDinner, MealTimeSnacks, MealTimeOther:
		return true
	}
	return false
}

// Review represents a student's rating of a canteen food item.
type Review struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	UserID      uint     `gorm:"not null;index" json:"user_id"`
	User        *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CanteenName string   `gorm:"not null" json:"canteen_name"`
	ItemName    string   `gorm:"not null" json:"item_name"`
	Rating      int      `gorm:"not null" json:"rating"`
	Comment     string   `gorm:"type:text" json:"comment"`
	MealTime    MealTime `gorm:"type:varchar(16);not null;index" json:"meal_time"`
	ImageURL    string   `json:"image_url,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
