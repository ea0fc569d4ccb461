package core

import (
	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/interfaces"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/service/retrieval"
	slackService "github.com/edmon-lab/mentor/pkg/service/slack"
)

// New builds the core tool set for the question-answering pipeline.
// notifier and info may be nil; the corresponding tools then degrade
// (escalation still issues reference IDs, school_info reports not found).
func New(engine *retrieval.Engine, students interfaces.StudentRepository, notifier slackService.Service, info *model.DistrictInfo) []tool.Tool {
	return []tool.Tool{
		&documentSearchTool{engine: engine},
		&studentRecordsTool{students: students},
		&schoolInfoTool{info: info},
		&escalationTool{notifier: notifier},
	}
}
