// Package notification delivers user-facing notifications (in-app, SSE,
// email) in response to domain events. Domain modules publish events and
// never talk to email providers or notification storage directly.
package notification

import (
	"context"
	"fmt"
	"strings"

	"rental_portal_backend/internal/email"
	"rental_portal_backend/internal/events"
	apphttp "rental_portal_backend/internal/http"
	notifhandler "rental_portal_backend/internal/notification/handler"
	"rental_portal_backend/internal/notification/inapp"
	"rental_portal_backend/internal/notification/sse"
	profilesdomain "rental_portal_backend/internal/profiles/domain"
	"rental_portal_backend/platform/config"
	"rental_portal_backend/platform/httpkit"
	"rental_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InAppNotifier persists an in-app notification for one user.
type InAppNotifier interface {
	Send(ctx context.Context, p inapp.SendParams) error
}

// ProfileReader resolves a user's active profile. Used to find contact
// details for email delivery; user identity lives in the external identity
// service, so the profile is the only place an email address is known.
type ProfileReader interface {
	GetActiveProfile(ctx context.Context, oxyUserID string) (profilesdomain.Profile, error)
}

type Module struct {
	inAppService *inapp.Service
	inApp        InAppNotifier
	sse          *sse.Service
	handler      *notifhandler.HTTPHandler
	sender       email.Sender
	profiles     ProfileReader
	appBaseURL   string
	log          *logger.Logger
}

func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	repo := inapp.NewRepository(pool)
	svc := inapp.NewService(repo, log)
	sseSvc := sse.New()
	svc.SetSSE(sseSvc)

	return &Module{
		inAppService: svc,
		inApp:        svc,
		sse:          sseSvc,
		handler:      notifhandler.NewHTTPHandler(svc),
		sender:       sender,
		appBaseURL:   strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		log:          log,
	}
}

func (m *Module) Name() string { return "notification" }

// SetProfileReader injects the profiles module (circular dependency avoidance).
func (m *Module) SetProfileReader(r ProfileReader) { m.profiles = r }

// InAppService exposes the in-app service for other modules.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// Close shuts down open SSE connections.
func (m *Module) Close() {
	if m.sse != nil {
		m.sse.Close()
	}
}

// RegisterRoutes registers the notification endpoints under /api/v1/notifications.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	rg := ctx.Protected.Group("/notifications")
	m.handler.RegisterRoutes(rg)

	rg.GET("/stream", m.sse.Handler(func(c *gin.Context) (string, bool) {
		identity := httpkit.GetIdentity(c)
		if identity == nil || !identity.IsAuthenticated() {
			return "", false
		}
		return identity.UserID(), true
	}))
}

var _ apphttp.Module = (*Module)(nil)

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ProfileCreated{}.EventName(), m)
	bus.Subscribe(events.SavedSearchMatched{}.EventName(), m)
	bus.Subscribe(events.TrustScoreRecalculated{}.EventName(), m)
}

// Handle dispatches a domain event to the matching notification handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ProfileCreated:
		return m.handleProfileCreated(ctx, e)
	case events.SavedSearchMatched:
		return m.handleSavedSearchMatched(ctx, e)
	case events.TrustScoreRecalculated:
		return m.handleTrustScoreRecalculated(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleProfileCreated(ctx context.Context, e events.ProfileCreated) error {
	// Welcome only personal profiles; agency and business profiles are
	// secondary identities created by existing users.
	if e.ProfileType != string(profilesdomain.ProfileTypePersonal) {
		return nil
	}

	if err := m.inApp.Send(ctx, inapp.SendParams{
		OxyUserID:    e.OxyUserID,
		Title:        "Welcome",
		Content:      "Your profile is ready. Complete it to raise your trust score.",
		ResourceID:   &e.ProfileID,
		ResourceType: "profile",
		Category:     "success",
	}); err != nil {
		return err
	}

	toEmail, firstName := m.contactFor(ctx, e.OxyUserID)
	if toEmail == "" {
		return nil
	}
	if err := m.sender.SendWelcomeEmail(ctx, toEmail, firstName); err != nil {
		m.log.Error("failed to send welcome email", "error", err, "userId", e.OxyUserID)
	}
	return nil
}

func (m *Module) handleSavedSearchMatched(ctx context.Context, e events.SavedSearchMatched) error {
	if err := m.inApp.Send(ctx, inapp.SendParams{
		OxyUserID:    e.OwnerID,
		Title:        "New listing matches your search",
		Content:      fmt.Sprintf("A new listing matches your saved search %q.", e.SearchName),
		ResourceID:   &e.PropertyID,
		ResourceType: "property",
	}); err != nil {
		return err
	}

	if m.sse != nil {
		m.sse.Publish(e.OwnerID, sse.Event{
			Type:    sse.EventSavedSearchMatch,
			Message: e.SearchName,
			Data:    e,
		})
	}

	toEmail, _ := m.contactFor(ctx, e.OwnerID)
	if toEmail == "" {
		return nil
	}
	if err := m.sender.SendSavedSearchMatchEmail(ctx, toEmail, e.SearchName, m.listingURL(e.PropertyID)); err != nil {
		m.log.Error("failed to send saved search match email", "error", err, "userId", e.OwnerID, "searchId", e.SearchID)
	}
	return nil
}

func (m *Module) handleTrustScoreRecalculated(ctx context.Context, e events.TrustScoreRecalculated) error {
	if err := m.inApp.Send(ctx, inapp.SendParams{
		OxyUserID:    e.OxyUserID,
		Title:        "Trust score updated",
		Content:      fmt.Sprintf("Your trust score changed from %d to %d.", e.PreviousScore, e.Score),
		ResourceID:   &e.ProfileID,
		ResourceType: "profile",
	}); err != nil {
		return err
	}

	if m.sse != nil {
		m.sse.Publish(e.OxyUserID, sse.Event{
			Type: sse.EventTrustScoreUpdated,
			Data: e,
		})
	}

	toEmail, _ := m.contactFor(ctx, e.OxyUserID)
	if toEmail == "" {
		return nil
	}
	if err := m.sender.SendTrustScoreChangedEmail(ctx, toEmail, e.Score, e.PreviousScore); err != nil {
		m.log.Error("failed to send trust score email", "error", err, "userId", e.OxyUserID)
	}
	return nil
}

// contactFor resolves the email address and first name from a user's active
// profile. Returns an empty address when the user has no active personal
// profile or never provided an email.
func (m *Module) contactFor(ctx context.Context, oxyUserID string) (toEmail, firstName string) {
	if m.profiles == nil {
		return "", ""
	}

	profile, err := m.profiles.GetActiveProfile(ctx, oxyUserID)
	if err != nil {
		return "", ""
	}
	if profile.PersonalProfile == nil || profile.PersonalProfile.BasicInfo == nil {
		return "", ""
	}

	info := profile.PersonalProfile.BasicInfo
	return info.Email, info.FirstName
}

func (m *Module) listingURL(propertyID uuid.UUID) string {
	return m.appBaseURL + "/properties/" + propertyID.String()
}
