package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fpna_dashboard/pkg/core/deck"
	"fpna_dashboard/pkg/core/llm"
	"fpna_dashboard/pkg/core/narrative"
	"fpna_dashboard/pkg/core/pipeline"
	"fpna_dashboard/pkg/core/projection"
	"fpna_dashboard/pkg/core/visual"
	"fpna_dashboard/pkg/models"
)

// --- Stage construction ---

func (a *app) generateStage(cmd *cobra.Command) (pipeline.Stage, error) {
	opts, err := a.cfg.GenerateOptions()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("months") {
		opts.Months, _ = cmd.Flags().GetInt("months")
	}
	if cmd.Flags().Changed("start") {
		raw, _ := cmd.Flags().GetString("start")
		if opts.Start, err = models.ParseMonth(raw); err != nil {
			return nil, fmt.Errorf("--start: %w", err)
		}
	}
	return &pipeline.GenerateStage{Store: a.store, Options: opts}, nil
}

func (a *app) varianceStage() pipeline.Stage {
	return &pipeline.VarianceStage{Store: a.store}
}

func (a *app) forecastStage() pipeline.Stage {
	engine := projection.NewEngine(a.cfg.ForecastOptions(), a.log.WithField("component", "projection"))
	return &pipeline.ForecastStage{Store: a.store, Engine: engine}
}

func (a *app) summaryStage() (pipeline.Stage, error) {
	provider, err := llm.Select(a.cfg.LLMSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to select narrative provider: %w", err)
	}
	gen := narrative.NewGenerator(provider, a.log.WithField("component", "narrative"))
	return &pipeline.SummaryStage{Store: a.store, Generator: gen}, nil
}

func (a *app) visualsStage() pipeline.Stage {
	return &pipeline.VisualsStage{Store: a.store, Size: visual.DefaultSize(), Log: a.log.WithField("component", "visual")}
}

func (a *app) deckStage() pipeline.Stage {
	return &pipeline.DeckStage{Builder: deck.NewBuilder(a.store)}
}

// execute runs stages through the orchestrator and prints where the outputs
// went.
func (a *app) execute(cmd *cobra.Command, stages ...pipeline.Stage) error {
	m, err := pipeline.NewOrchestrator(a.store, a.log).Run(cmd.Context(), stages...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Run %s %s → %s\n", m.RunID, m.Status, a.store.Dir())
	for _, f := range m.Files {
		fmt.Fprintf(out, "   %s\n", a.store.Path(f))
	}
	if m.NarrativeProvider != "" {
		fmt.Fprintf(out, "🔎 Provider used: %s\n", m.NarrativeProvider)
	}
	return nil
}

// --- Stage Commands ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic financials.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cli.generateStage(cmd)
		if err != nil {
			return err
		}
		return cli.execute(cmd, st)
	},
}

var varianceCmd = &cobra.Command{
	Use:   "variance",
	Short: "Derive variance summary, monthly trend, department variance and latest KPIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.execute(cmd, cli.varianceStage())
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast revenue per department",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.execute(cmd, cli.forecastStage())
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Write the executive summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cli.summaryStage()
		if err != nil {
			return err
		}
		return cli.execute(cmd, st)
	},
}

var visualsCmd = &cobra.Command{
	Use:   "visuals",
	Short: "Render the dashboard charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.execute(cmd, cli.visualsStage())
	},
}

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Assemble the HTML executive deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.execute(cmd, cli.deckStage())
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run variance, forecast, summary, visuals and deck in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := cli.summaryStage()
		if err != nil {
			return err
		}
		var stages []pipeline.Stage
		if gen, _ := cmd.Flags().GetBool("generate"); gen {
			st, err := cli.generateStage(cmd)
			if err != nil {
				return err
			}
			stages = append(stages, st)
		}
		stages = append(stages,
			cli.varianceStage(),
			cli.forecastStage(),
			summary,
			cli.visualsStage(),
			cli.deckStage(),
		)
		return cli.execute(cmd, stages...)
	},
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("seed", 0, "random seed (0 = time based; default from config)")
	cmd.Flags().Int("months", 0, "number of months to generate (default from config)")
	cmd.Flags().String("start", "", "first month, YYYY-MM (default from config)")
}

func init() {
	addGenerateFlags(generateCmd)
	addGenerateFlags(runCmd)
	runCmd.Flags().Bool("generate", false, "write synthetic financials.csv before running")
}
