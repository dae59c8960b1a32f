package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Links is what a provider returns for a scheduled session.
type Links struct {
	MeetingLink  string `json:"meeting_link"`
	CalendarLink string `json:"calendar_link"`
}

// Provider creates a video meeting for a confirmed session. Implementations
// must treat any failure as fatal for the confirmation: no links, no confirm.
type Provider interface {
	CreateMeeting(ctx context.Context, startAt, endAt time.Time, mentorEmail, menteeEmail string) (*Links, error)
}

type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type createMeetingRequest struct {
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Attendees []string  `json:"attendees"`
}

type createMeetingResponse struct {
	MeetingLink  string `json:"meeting_link"`
	CalendarLink string `json:"calendar_link"`
}

func (p *HTTPProvider) CreateMeeting(ctx context.Context, startAt, endAt time.Time, mentorEmail, menteeEmail string) (*Links, error) {
	body, err := json.Marshal(createMeetingRequest{
		StartAt:   startAt.UTC(),
		EndAt:     endAt.UTC(),
		Attendees: []string{mentorEmail, menteeEmail},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal meeting request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/meetings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build meeting request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call meeting provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("meeting provider returned status %d", resp.StatusCode)
	}

	var out createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode meeting response: %w", err)
	}
	if out.MeetingLink == "" {
		return nil, fmt.Errorf("meeting provider returned empty link")
	}

	return &Links{MeetingLink: out.MeetingLink, CalendarLink: out.CalendarLink}, nil
}
