package waitlist

import (
	"context"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/internal/models"
	apperrors "github.com/onedotone/landing-api/pkg/errors"
	"github.com/onedotone/landing-api/pkg/iplookup"
	"github.com/onedotone/landing-api/pkg/useragent"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/unicode/norm"
)

const (
	maxEmailLength = 255
	maxNameLength  = 255
)

// Submitter performs one waitlist signup.
type Submitter interface {
	// Submit validates and enriches the request, then issues exactly one insert.
	// Every failure is returned as a classified AppError whose message is safe to display.
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error)
}

type WaitlistService interface {
	Submitter

	// FindEntryByID retrieves a waitlist entry by its unique ID.
	FindEntryByID(ctx context.Context, id uint) (*WaitlistEntryResponse, error)

	// GetAllEntries retrieves all waitlist entries.
	GetAllEntries(ctx context.Context) ([]WaitlistEntryResponse, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	resolver   iplookup.Resolver
	metrics    *submissionMetrics
	now        func() time.Time
}

// NewWaitlistService wires the store and IP resolver. A nil resolver means
// iplookup.CandidateResolver; a nil registerer leaves metrics unexported.
func NewWaitlistService(
	logger *log.Logger,
	repository WaitlistRepository,
	resolver iplookup.Resolver,
	reg prometheus.Registerer,
) WaitlistService {
	return &waitlistService{
		logger:     logger,
		repository: repository,
		resolver:   resolverOrDefault(resolver),
		metrics:    newSubmissionMetrics(reg),
		now:        time.Now,
	}
}

func resolverOrDefault(resolver iplookup.Resolver) iplookup.Resolver {
	if resolver == nil {
		return iplookup.NewCandidateResolver()
	}
	return resolver
}

func (s *waitlistService) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Submit received empty request")
		return nil, apperrors.NewInvalidRequestError(MessageMissingEmail, nil)
	}

	entry, err := s.buildEntry(req)
	if err != nil {
		logger.Warn("Rejected waitlist submission", "source", req.Source, "error", err)
		s.metrics.observe(req.Source, outcomeValidation)
		return nil, err
	}

	ctx, span := otel.Tracer("waitlist").Start(ctx, "waitlist.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("waitlist.source", entry.Source))

	s.enrich(ctx, entry, req.Client)

	stored, err := s.repository.CreateEntry(ctx, entry)
	if err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeUnknown {
			err = apperrors.NewDatabaseError(MessageUnknown, err)
		}

		outcome := outcomeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.metrics.observe(req.Source, outcome)

		if outcome == outcomeDuplicate {
			logger.Info("Waitlist email already registered", "email", log.MaskEmail(entry.Email), "source", entry.Source)
		} else {
			logger.Error("Failed to store waitlist entry",
				"email", log.MaskEmail(entry.Email),
				"source", entry.Source,
				"outcome", outcome,
				"error", err,
			)
		}
		return nil, err
	}

	s.metrics.observe(req.Source, outcomeSuccess)
	logger.Info("Waitlist entry created",
		"id", stored.ID,
		"email", log.MaskEmail(stored.Email),
		"source", stored.Source,
		"device_type", stored.DeviceType,
	)

	return &SubmitResponse{
		State:        "success",
		Message:      MessageSuccess,
		DisplayForMs: req.Source.ConfirmationWindow().Milliseconds(),
		Entry:        ToWaitlistEntryResponse(stored),
	}, nil
}

func (s *waitlistService) FindEntryByID(ctx context.Context, id uint) (*WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id == 0 {
		logger.Error("FindEntryByID received invalid ID")
		return nil, apperrors.NewInvalidRequestError("Invalid entry ID", nil)
	}

	entry, err := s.repository.FindEntryByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find waitlist entry", "id", id, "error", err)
		return nil, err
	}

	response := ToWaitlistEntryResponse(entry)
	return &response, nil
}

func (s *waitlistService) GetAllEntries(ctx context.Context) ([]WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.GetAllEntries(ctx)
	if err != nil {
		logger.Error("Failed to get all waitlist entries", "error", err)
		return nil, err
	}

	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToWaitlistEntryResponse(entry))
	}

	return responses, nil
}

// buildEntry runs every local check; nothing here touches the network.
func (s *waitlistService) buildEntry(req *SubmitRequest) (*models.WaitlistEntry, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if !req.Source.Valid() {
		return nil, apperrors.NewInvalidRequestError(MessageInvalidForm, nil)
	}

	name := NormalizeName(req.Name)
	if name != nil && utf8.RuneCountInString(*name) > maxNameLength {
		return nil, apperrors.NewInvalidRequestError(MessageInvalidName, nil)
	}

	return &models.WaitlistEntry{
		Email:     email,
		Name:      name,
		Source:    string(req.Source),
		CreatedAt: s.now().UTC(),
	}, nil
}

func (s *waitlistService) enrich(ctx context.Context, entry *models.WaitlistEntry, client ClientContext) {
	entry.IPAddress = s.resolveIP(ctx, client)
	entry.UserAgent = strings.TrimSpace(client.UserAgent)
	entry.DeviceType = string(useragent.DetectDevice(entry.UserAgent))
	entry.ReferrerURL = optionalString(client.Referrer)
	entry.LandingPageURL = optionalString(client.PageURL)
	entry.UTMSource, entry.UTMMedium, entry.UTMCampaign = parseUTM(client.PageURL)
}

// resolveIP prefers the transport peer and falls back to the browser-reported
// address. Neither is trusted unless it is a public address.
func (s *waitlistService) resolveIP(ctx context.Context, client ClientContext) string {
	return s.resolver.Resolve(ctx, client.IPAddress, client.ReportedIP)
}

// NormalizeEmail trims and lowercases, then rejects anything that is not a bare address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.NewInvalidRequestError(MessageMissingEmail, nil)
	}

	if len(email) > maxEmailLength {
		return "", apperrors.NewInvalidRequestError(MessageInvalidEmail, nil)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", apperrors.NewInvalidRequestError(MessageInvalidEmail, err)
	}

	return email, nil
}

// NormalizeName trims and NFC-normalizes; blank names become nil.
func NormalizeName(raw *string) *string {
	if raw == nil {
		return nil
	}
	return optionalString(norm.NFC.String(*raw))
}

func parseUTM(pageURL string) (source, medium, campaign *string) {
	if strings.TrimSpace(pageURL) == "" {
		return nil, nil, nil
	}

	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, nil, nil
	}

	query := parsed.Query()
	return optionalString(query.Get("utm_source")),
		optionalString(query.Get("utm_medium")),
		optionalString(query.Get("utm_campaign"))
}

func optionalString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
