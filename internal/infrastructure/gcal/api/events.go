// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Event status constants for the Google Calendar API
const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"
)

// EventDateTime is the start or end of a calendar event. Timed events carry
// DateTime and TimeZone; all-day events carry only Date.
type EventDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Attendee is one attendee entry on a calendar event
type Attendee struct {
	Email          string `json:"email,omitempty"`
	Self           bool   `json:"self,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// Creator identifies who created the event
type Creator struct {
	Email string `json:"email,omitempty"`
	Self  bool   `json:"self,omitempty"`
}

// Event represents a Google Calendar event
type Event struct {
	ID          string        `json:"id,omitempty"`
	Status      string        `json:"status,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Start       EventDateTime `json:"start"`
	End         EventDateTime `json:"end"`
	Creator     *Creator      `json:"creator,omitempty"`
	Attendees   []Attendee    `json:"attendees,omitempty"`
}

// ListEventsQuery holds the query parameters for an events list call
type ListEventsQuery struct {
	TimeMin      time.Time
	TimeMax      time.Time
	SingleEvents bool
	OrderBy      string
	MaxResults   int
}

// listEventsResponse is the paginated response from an events list call
type listEventsResponse struct {
	Items         []Event `json:"items"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// ListEvents lists the events on a calendar within the query window, following
// pagination. This is a pure API call with no business logic.
func (c *Client) ListEvents(ctx context.Context, calendarID string, query ListEventsQuery) ([]Event, error) {
	values := url.Values{}
	if !query.TimeMin.IsZero() {
		values.Set("timeMin", query.TimeMin.Format(time.RFC3339))
	}
	if !query.TimeMax.IsZero() {
		values.Set("timeMax", query.TimeMax.Format(time.RFC3339))
	}
	if query.SingleEvents {
		values.Set("singleEvents", "true")
	}
	if query.OrderBy != "" {
		values.Set("orderBy", query.OrderBy)
	}
	if query.MaxResults > 0 {
		values.Set("maxResults", strconv.Itoa(query.MaxResults))
	}

	var events []Event
	pageToken := ""
	for {
		if pageToken != "" {
			values.Set("pageToken", pageToken)
		}
		path := fmt.Sprintf("/calendars/%s/events?%s", url.PathEscape(calendarID), values.Encode())

		resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return nil, parseErrorResponse(body)
		}

		var page listEventsResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("failed to decode events response: %w", err)
		}
		_ = resp.Body.Close()

		events = append(events, page.Items...)
		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// InsertEvent creates a new event on a calendar.
// This is a pure API call with no business logic.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, event *Event) (*Event, error) {
	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(calendarID))
	resp, err := c.doRequest(ctx, http.MethodPost, path, event)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(body)
	}

	var created Event
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}

	return &created, nil
}

// PatchEvent updates fields of an existing event on a calendar.
// This is a pure API call with no business logic.
func (c *Client) PatchEvent(ctx context.Context, calendarID string, eventID string, event *Event) error {
	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(calendarID), url.PathEscape(eventID))
	resp, err := c.doRequest(ctx, http.MethodPatch, path, event)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(body)
	}

	return nil
}

// DeleteEvent removes an event from a calendar.
// This is a pure API call with no business logic.
func (c *Client) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	path := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(calendarID), url.PathEscape(eventID))
	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(body)
	}

	return nil
}
