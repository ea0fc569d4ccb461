package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/cli/config"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/usecase"
	"github.com/edmon-lab/mentor/pkg/utils/errutil"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/edmon-lab/mentor/pkg/utils/safe"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var districtID string
	var actorID string
	var actorName string
	var roleName string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var slackCfg config.Slack
	var districtCfg config.DistrictFile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "district-id",
			Usage:       "District the actor belongs to",
			Required:    true,
			Sources:     cli.EnvVars("MENTOR_DISTRICT_ID"),
			Destination: &districtID,
		},
		&cli.StringFlag{
			Name:        "actor-id",
			Usage:       "Identifier of the asking user",
			Required:    true,
			Sources:     cli.EnvVars("MENTOR_ACTOR_ID"),
			Destination: &actorID,
		},
		&cli.StringFlag{
			Name:        "actor-name",
			Usage:       "Display name of the asking user",
			Destination: &actorName,
		},
		&cli.StringFlag{
			Name:        "role",
			Usage:       "Role of the asking user (student, parent, teacher, staff, admin)",
			Value:       "parent",
			Sources:     cli.EnvVars("MENTOR_ROLE"),
			Destination: &roleName,
		},
		&cli.StringSliceFlag{
			Name:  "student-id",
			Usage: "Student linked to the actor (repeatable)",
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, districtCfg.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Aliases:   []string{"a"},
		Usage:     "Ask the district assistant one question",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.New("question argument is required")
			}

			role, err := types.ParseRole(roleName)
			if err != nil {
				return goerr.Wrap(err, "invalid role", goerr.V("role", roleName))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			notifier, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			districtConfig, err := districtCfg.Configure()
			if err != nil {
				return err
			}

			var opts []usecase.Option
			if llmClient != nil {
				opts = append(opts, usecase.WithLLMClient(llmClient))
			} else {
				logger.Warn("No Gemini project configured, running in degraded mode")
			}
			if notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}
			if districtConfig != nil {
				opts = append(opts, districtConfig.Options()...)
			}

			uc, err := usecase.New(repo, opts...)
			if err != nil {
				return err
			}

			actor := &model.Actor{
				ID:          actorID,
				Name:        actorName,
				DistrictID:  districtID,
				Role:        role,
				Permissions: rolePermissions(role),
				StudentIDs:  c.StringSlice("student-id"),
			}

			ctx = tool.WithUpdate(ctx, func(ctx context.Context, message string) {
				color.New(color.Faint).Fprintln(os.Stderr, message)
			})

			result, err := uc.Ask(ctx, actor, query)
			if err != nil {
				return errutil.Handle(ctx, err, "failed to answer question")
			}

			printAskResult(result)
			return nil
		},
	}
}

// rolePermissions grants the default capability set for a role. Parents and
// students still only reach records of students they are linked to; the
// student records tool enforces linkage.
func rolePermissions(role types.Role) []types.Permission {
	switch role {
	case types.RoleAdmin:
		return []types.Permission{types.PermissionAdmin}
	case types.RoleTeacher, types.RoleStaff, types.RoleParent:
		return []types.Permission{
			types.PermissionDocumentsRead,
			types.PermissionStudentsRead,
			types.PermissionEscalate,
			types.PermissionSchoolInfo,
		}
	default:
		return []types.Permission{
			types.PermissionDocumentsRead,
			types.PermissionEscalate,
			types.PermissionSchoolInfo,
		}
	}
}

func printAskResult(result *usecase.AskResult) {
	fmt.Println(result.Response.Content)

	if len(result.Response.Citations) > 0 {
		fmt.Println()
		color.New(color.Bold).Println("Sources")
		for _, c := range result.Response.Citations {
			title := c.Title
			if title == "" {
				title = c.SourceID
			}
			fmt.Printf("  - %s (%s)\n", title, c.SourceID)
		}
	}

	if len(result.Response.SuggestedFollowUps) > 0 {
		fmt.Println()
		color.New(color.Bold).Println("You could also ask")
		for _, q := range result.Response.SuggestedFollowUps {
			fmt.Printf("  - %s\n", q)
		}
	}

	if result.Escalated {
		fmt.Println()
		if result.Response.EscalationRef != "" {
			color.Yellow("Escalated to district staff. Reference: %s", result.Response.EscalationRef)
		} else {
			color.Yellow("Escalated to district staff.")
		}
	}

	fmt.Println()
	color.New(color.Faint).Printf("intent=%s confidence=%.2f\n",
		result.Intent.Category, result.Response.Confidence)
}
