package slack

import (
	"context"
	"fmt"

	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Escalation is the payload posted to the district's escalation channel
type Escalation struct {
	ReferenceID string
	DistrictID  string
	ActorID     string
	Role        types.Role
	Category    types.IntentCategory
	Urgency     types.Urgency
	Query       string
	Reason      string
}

// Service posts escalation notifications for human follow-up
type Service interface {
	NotifyEscalation(ctx context.Context, esc *Escalation) error
}

// client implements Service interface
type client struct {
	api       *slack.Client
	channelID string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPI replaces the underlying Slack API client, used by tests
func WithAPI(api *slack.Client) Option {
	return func(c *client) {
		c.api = api
	}
}

// New creates a new Slack escalation notifier with the provided bot token
func New(token, channelID string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack escalation channel ID is required")
	}

	c := &client{
		api:       slack.New(token),
		channelID: channelID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NotifyEscalation posts one escalation to the configured channel
func (c *client) NotifyEscalation(ctx context.Context, esc *Escalation) error {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, fmt.Sprintf("Escalation %s", esc.ReferenceID), false, false),
	)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*District:*\n%s", esc.DistrictID), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Role:*\n%s", esc.Role), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Category:*\n%s", esc.Category), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Urgency:*\n%s", esc.Urgency), false, false),
	}
	detail := slack.NewSectionBlock(nil, fields, nil)

	query := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Message:*\n>%s", esc.Query), false, false),
		nil, nil,
	)
	reason := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Reason:* %s", esc.Reason), false, false),
		nil, nil,
	)

	_, _, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionBlocks(header, detail, query, reason),
		slack.MsgOptionText(fmt.Sprintf("Escalation %s (%s)", esc.ReferenceID, esc.Urgency), false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post escalation message",
			goerr.V("channelID", c.channelID), goerr.V("referenceID", esc.ReferenceID))
	}
	return nil
}
