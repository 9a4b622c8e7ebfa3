package models

import "time"

// Waitlist sources, one per signup form on the landing page.
const (
	WaitlistSourceHeroSection = "hero_section"
	WaitlistSourceLandingPage = "landing_page"
)

// WaitlistEntry is one signup attempt. Rows are insert-only; email is the deduplication key.
type WaitlistEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id,omitempty"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:waitlist_email_key" json:"email"`
	Name           *string   `gorm:"type:varchar(255)" json:"name"`
	Source         string    `gorm:"type:varchar(32);not null" json:"source"`
	IPAddress      string    `gorm:"type:varchar(64);not null;default:unknown" json:"ip_address"`
	UserAgent      string    `gorm:"type:text" json:"user_agent"`
	UTMSource      *string   `gorm:"type:varchar(255)" json:"utm_source"`
	UTMMedium      *string   `gorm:"type:varchar(255)" json:"utm_medium"`
	UTMCampaign    *string   `gorm:"type:varchar(255)" json:"utm_campaign"`
	ReferrerURL    *string   `gorm:"type:text" json:"referrer_url"`
	LandingPageURL *string   `gorm:"type:text" json:"landing_page_url"`
	DeviceType     string    `gorm:"type:varchar(16);not null" json:"device_type"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}
