package cli

import (
	"context"

	"github.com/edmon-lab/mentor/pkg/cli/config"
	"github.com/edmon-lab/mentor/pkg/repository/memory"
	"github.com/edmon-lab/mentor/pkg/usecase"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var districtCfg config.DistrictFile

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a district configuration file",
		Flags:   districtCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if districtCfg.Path() == "" {
				return goerr.New("config is required")
			}

			districtConfig, err := districtCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"district_id", districtConfig.District.ID,
				"district_name", districtConfig.District.Name,
				"school_count", len(districtConfig.Schools),
				"blocked_terms", len(districtConfig.Safety.BlockedTerms),
				"sensitive_terms", len(districtConfig.Safety.SensitiveTerms),
			)

			// Build the pipeline once to catch invalid tunables early
			uc, err := usecase.New(memory.New(), districtConfig.Options()...)
			if err != nil {
				return goerr.Wrap(err, "pipeline configuration is invalid")
			}

			for _, def := range uc.Tools() {
				logger.Info("Tool registered",
					"name", def.Name,
					"intents", len(def.HandledIntents),
					"timeout", def.Timeout,
				)
			}

			return nil
		},
	}
}
