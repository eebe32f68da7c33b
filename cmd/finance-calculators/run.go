package main

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/internal/batch"
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/output"
	"github.com/iwvelando/finance-calculators/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runCmd(a *app) *cobra.Command {
	var configLocation string
	var outputFormatFlag string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every calculation in a batch configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(configLocation)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
			}
			if err := a.useLogging(conf.Logging); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			// CLI override takes precedence over config
			outputFormat := conf.Output.Format
			if outputFormatFlag != "" {
				outputFormat = outputFormatFlag
			}
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}

			for _, warning := range conf.ValidateConfiguration(a.registry) {
				a.logger.Warn("Configuration warning: "+warning,
					zap.String("op", "main.run"),
				)
			}

			outcomes, err := batch.Run(a.logger, a.registry, *conf)
			if err != nil {
				return err
			}
			if err := output.Write(cmd.OutOrStdout(), outputFormat, outcomes); err != nil {
				return err
			}
			if failed := batch.Failed(outcomes); failed > 0 {
				return fmt.Errorf("%d of %d calculations failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configLocation, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	cmd.Flags().StringVar(&outputFormatFlag, "output-format", "", "type of output override: markdown, pretty, json, yaml, csv")
	return cmd
}
