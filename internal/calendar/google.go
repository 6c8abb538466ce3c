package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"invoicez/internal/config"
	appLog "invoicez/internal/log"
	"invoicez/internal/model"
	"invoicez/internal/prompt"
)

// Google is the backend over the Google Calendar API. OAuth secrets
// and the refresh token live under the hidden state directory; the
// first run walks the operator through the consent flow.
type Google struct {
	paths    *config.Paths
	pattern  *regexp.Regexp
	prompter prompt.Prompter
	service  *gcal.Service

	calendarID string
}

// NewGoogle authenticates against the Google Calendar API and returns
// a ready session.
func NewGoogle(ctx context.Context, paths *config.Paths, settings *config.Settings, prompter prompt.Prompter) (*Google, error) {
	pattern, err := model.CompilePattern(settings.TitlePattern)
	if err != nil {
		return nil, err
	}

	secrets, err := os.ReadFile(paths.GoogleSecrets)
	if err != nil {
		return nil, fmt.Errorf("could not read the Google OAuth secrets at %s: %w", paths.GoogleSecrets, err)
	}
	oauthConfig, err := google.ConfigFromJSON(secrets, gcal.CalendarEventsScope, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("could not parse the Google OAuth secrets: %w", err)
	}

	token, err := loadToken(paths.GoogleToken)
	if err != nil {
		token, err = authorize(ctx, oauthConfig, prompter)
		if err != nil {
			return nil, err
		}
		if err := saveToken(paths, token); err != nil {
			appLog.Error("could not persist the Google OAuth token", err, "path", paths.GoogleToken)
		}
	}

	service, err := gcal.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	return &Google{
		paths:    paths,
		pattern:  pattern,
		prompter: prompter,
		service:  service,
	}, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func saveToken(paths *config.Paths, token *oauth2.Token) error {
	if err := os.MkdirAll(paths.InvoicezDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.GoogleToken, data, 0o600)
}

func authorize(ctx context.Context, oauthConfig *oauth2.Config, prompter prompt.Prompter) (*oauth2.Token, error) {
	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	code, err := prompter.Ask(fmt.Sprintf(
		"Open the following URL in a browser, authorize the application, then paste the code here\n%s\nAuthorization code", authURL))
	if err != nil {
		return nil, err
	}
	token, err := oauthConfig.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("could not exchange the authorization code: %w", err)
	}
	return token, nil
}

func (g *Google) ListEvents(ctx context.Context) ([]model.Event, error) {
	raws, err := g.ListRawEvents(ctx)
	if err != nil {
		return nil, err
	}
	return EventsFromRaw(raws, g.pattern)
}

// ListRawEvents pages through the selected calendar until the API
// stops handing out page tokens.
func (g *Google) ListRawEvents(ctx context.Context) ([]model.RawEvent, error) {
	calID, err := g.selectedCalendarID(ctx)
	if err != nil {
		return nil, err
	}

	raws := make([]model.RawEvent, 0)
	pageToken := ""
	for {
		call := g.service.Events.List(calID).SingleEvents(true).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, item := range res.Items {
			if item.Status == "cancelled" {
				continue
			}
			raws = append(raws, rawFromItem(item))
		}
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}
	appLog.Info("listed raw events", "calendar", calID, "count", len(raws))
	return raws, nil
}

func rawFromItem(item *gcal.Event) model.RawEvent {
	raw := model.RawEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		HTMLLink:    item.HtmlLink,
	}
	if item.Start != nil {
		raw.Start = model.RawEventTime{Date: item.Start.Date, DateTime: item.Start.DateTime}
	}
	if item.End != nil {
		raw.End = model.RawEventTime{Date: item.End.Date, DateTime: item.End.DateTime}
	}
	return raw
}

func (g *Google) EditEventDescription(ctx context.Context, eventID, newDescription string) error {
	calID, err := g.selectedCalendarID(ctx)
	if err != nil {
		return err
	}
	patch := &gcal.Event{Description: newDescription}
	_, err = g.service.Events.Patch(calID, eventID, patch).Context(ctx).Do()
	return err
}

// SelectCalendar lists the account's calendars and stores the chosen
// id so later runs skip the question.
func (g *Google) SelectCalendar(ctx context.Context) error {
	calendars := make([]*gcal.CalendarListEntry, 0)
	pageToken := ""
	for {
		call := g.service.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return err
		}
		calendars = append(calendars, res.Items...)
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}
	if len(calendars) == 0 {
		return errors.New("the Google account has no calendars")
	}

	for i, entry := range calendars {
		fmt.Printf("%2d. %s\n", i+1, entry.Summary)
	}
	choice, err := g.prompter.AskInt("Select the calendar to synchronize from", 1, len(calendars))
	if err != nil {
		return err
	}
	selected := calendars[choice-1]

	if err := os.MkdirAll(g.paths.InvoicezDir, 0o700); err != nil {
		return err
	}
	if err := model.WriteFileAtomic(g.paths.SelectedCalendar, []byte(selected.Id+"\n")); err != nil {
		return err
	}
	g.calendarID = selected.Id
	appLog.Info("calendar selected", "calendar", selected.Summary)
	return nil
}

func (g *Google) selectedCalendarID(ctx context.Context) (string, error) {
	if g.calendarID != "" {
		return g.calendarID, nil
	}
	data, err := os.ReadFile(g.paths.SelectedCalendar)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err := g.SelectCalendar(ctx); err != nil {
			return "", err
		}
		return g.calendarID, nil
	}
	g.calendarID = strings.TrimSpace(string(data))
	if g.calendarID == "" {
		return "", fmt.Errorf("%s is empty, run select-calendar", g.paths.SelectedCalendar)
	}
	return g.calendarID, nil
}
