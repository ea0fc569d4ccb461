package config

import (
	slackService "github.com/edmon-lab/mentor/pkg/service/slack"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the escalation notification channel
type Slack struct {
	botToken  string
	channelID string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for escalation notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("MENTOR_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-escalation-channel",
			Usage:       "Slack channel ID receiving escalation notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("MENTOR_SLACK_ESCALATION_CHANNEL"),
			Destination: &x.channelID,
		},
	}
}

// Configure builds the escalation notifier. Returns nil when Slack is not
// configured; escalations are then log-only.
func (x *Slack) Configure() (slackService.Service, error) {
	if x.botToken == "" && x.channelID == "" {
		return nil, nil
	}
	if x.botToken == "" || x.channelID == "" {
		return nil, goerr.New("slack-bot-token and slack-escalation-channel must be set together")
	}
	return slackService.New(x.botToken, x.channelID)
}
