package waitlist

import (
	"time"

	"github.com/onedotone/landing-api/internal/models"
	"github.com/onedotone/landing-api/pkg/constants"
)

type Source string

const (
	SourceHeroSection Source = models.WaitlistSourceHeroSection
	SourceLandingPage Source = models.WaitlistSourceLandingPage
)

// confirmationWindows is how long each form keeps its success state before returning to idle.
var confirmationWindows = map[Source]time.Duration{
	SourceHeroSection: 3 * time.Second,
	SourceLandingPage: 4 * time.Second,
}

func (s Source) Valid() bool {
	_, ok := confirmationWindows[s]
	return ok
}

func (s Source) ConfirmationWindow() time.Duration {
	return confirmationWindows[s]
}

// ClientContext is the ambient request metadata. Every field is optional.
// IPAddress is the transport peer; ReportedIP is what the visitor's browser
// learned from the public lookup endpoint.
type ClientContext struct {
	IPAddress  string
	ReportedIP string
	UserAgent  string
	PageURL    string
	Referrer   string
}

type SubmitRequest struct {
	Name   *string
	Email  string
	Source Source
	Client ClientContext
}

// SubmitWaitlistRequest is the JSON body accepted by POST /v1/waitlist.
// Email presence and format are checked by the service so the messages stay consistent.
type SubmitWaitlistRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=255"`
	Email     string  `json:"email" binding:"max=320"`
	Source    string  `json:"source" binding:"required,oneof=hero_section landing_page"`
	PageURL   string  `json:"page_url" binding:"omitempty,max=2048"`
	Referrer  string  `json:"referrer" binding:"omitempty,max=2048"`
	IPAddress string  `json:"ip_address" binding:"omitempty,max=64"`
}

type SubmitResponse struct {
	State        string                `json:"state"`
	Message      string                `json:"message"`
	DisplayForMs int64                 `json:"display_for_ms"`
	Entry        WaitlistEntryResponse `json:"entry"`
}

type WaitlistEntryResponse struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	Name           *string `json:"name"`
	Source         string  `json:"source"`
	IPAddress      string  `json:"ip_address"`
	UserAgent      string  `json:"user_agent"`
	UTMSource      *string `json:"utm_source"`
	UTMMedium      *string `json:"utm_medium"`
	UTMCampaign    *string `json:"utm_campaign"`
	ReferrerURL    *string `json:"referrer_url"`
	LandingPageURL *string `json:"landing_page_url"`
	DeviceType     string  `json:"device_type"`
	CreatedAt      string  `json:"created_at"`
}

// ========================================
// Mappers
// ========================================

func ToSubmitRequest(req *SubmitWaitlistRequest, client ClientContext) *SubmitRequest {
	if req == nil {
		return nil
	}
	if req.PageURL != "" {
		client.PageURL = req.PageURL
	}
	if req.Referrer != "" {
		client.Referrer = req.Referrer
	}
	client.ReportedIP = req.IPAddress
	return &SubmitRequest{
		Name:   req.Name,
		Email:  req.Email,
		Source: Source(req.Source),
		Client: client,
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:             entry.ID,
		Email:          entry.Email,
		Name:           entry.Name,
		Source:         entry.Source,
		IPAddress:      entry.IPAddress,
		UserAgent:      entry.UserAgent,
		UTMSource:      entry.UTMSource,
		UTMMedium:      entry.UTMMedium,
		UTMCampaign:    entry.UTMCampaign,
		ReferrerURL:    entry.ReferrerURL,
		LandingPageURL: entry.LandingPageURL,
		DeviceType:     entry.DeviceType,
		CreatedAt:      entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}
