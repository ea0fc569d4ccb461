package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// schoolInfoTool serves the static district directory from configuration.
// No external call, so it reports full confidence.
type schoolInfoTool struct {
	info *model.DistrictInfo
}

func (t *schoolInfoTool) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        "school_info",
		Description: "Returns district and school contact details, office hours and directory information",
		RequiredPermissions: []types.Permission{
			types.PermissionSchoolInfo,
		},
		HandledIntents: []types.IntentCategory{
			types.IntentGeneral,
			types.IntentFacilities,
			types.IntentSchedule,
		},
		Timeout: 5 * time.Second,
	}
}

func (t *schoolInfoTool) Run(ctx context.Context, req *tool.Request) (*model.ToolResult, error) {
	if t.info == nil {
		return model.FailedToolResult("school_info", types.ErrKindNotFound,
			"no district directory is configured"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", t.info.Name)
	if t.info.Address != "" {
		fmt.Fprintf(&sb, "Address: %s\n", t.info.Address)
	}
	if t.info.Phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", t.info.Phone)
	}
	if t.info.Website != "" {
		fmt.Fprintf(&sb, "Website: %s\n", t.info.Website)
	}
	if t.info.OfficeHours != "" {
		fmt.Fprintf(&sb, "Office hours: %s\n", t.info.OfficeHours)
	}

	if len(t.info.Schools) > 0 {
		sb.WriteString("\nSchools:\n")
		for _, s := range t.info.Schools {
			fmt.Fprintf(&sb, "- %s", s.Name)
			if s.Principal != "" {
				fmt.Fprintf(&sb, " (principal: %s)", s.Principal)
			}
			if s.Phone != "" {
				fmt.Fprintf(&sb, ", %s", s.Phone)
			}
			if s.Hours != "" {
				fmt.Fprintf(&sb, ", hours %s", s.Hours)
			}
			sb.WriteString("\n")
		}
	}

	return &model.ToolResult{
		ToolName:      "school_info",
		Success:       true,
		Content:       strings.TrimSpace(sb.String()),
		Confidence:    1.0,
		HasConfidence: true,
	}, nil
}
