// Package cli builds the procureplan command tree.
package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vsinha/procureplan/pkg/infrastructure/config"
	"github.com/vsinha/procureplan/pkg/infrastructure/logging"
	"github.com/vsinha/procureplan/pkg/interfaces/cli/commands"
	"github.com/vsinha/procureplan/pkg/interfaces/cli/output"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

// state is filled by the root pre-run hook and read by subcommands
type state struct {
	flags    globalFlags
	settings config.Settings
	logger   *slog.Logger
}

// NewRootCommand returns the procureplan command tree
func NewRootCommand() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "procureplan",
		Short: "Procurement planning from sales, inventory and supplier offers",
		Long: `procureplan forecasts demand per SKU, allocates quantities to supplier
offers, enforces supplier exclusions and scores the resulting plan.

Every run records a provenance graph and ranks the missing inputs that
would most improve the next plan.`,
		PersistentPreRunE: st.load,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.flags.configPath, "config", "", "Path to a YAML settings file")
	pf.StringVar(&st.flags.envFile, "env-file", "", "Path to a .env file (default .env)")
	pf.StringVar(&st.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newPlanCmd(st),
		newOptionsCmd(),
		newGoalCmd(),
		newQuestionsCmd(st),
		newCritiqueCmd(st),
		newEvalCmd(st),
		newServeCmd(st),
	)
	return root
}

// Execute runs the command tree, canceling ctx on SIGINT or SIGTERM
func Execute(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (st *state) load(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(config.LoadOptions{
		ConfigPath: st.flags.configPath,
		EnvFile:    st.flags.envFile,
	})
	if err != nil {
		return err
	}
	if st.flags.logLevel != "" {
		if _, err := config.ParseLevel(st.flags.logLevel); err != nil {
			return err
		}
		settings.LogLevel = st.flags.logLevel
	}
	st.settings = settings
	st.logger = logging.NewWithWriter(cmd.ErrOrStderr(), settings.LogFormat, settings.LogLevel)
	return nil
}

// withRuntime builds the planner services for one command and releases them afterwards
func (st *state) withRuntime(cmd *cobra.Command, run func(*commands.Runtime) error) error {
	rt, err := commands.NewRuntime(cmd.Context(), st.settings, st.logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	return run(rt)
}

func addInputFlags(cmd *cobra.Command, in *commands.InputFiles) {
	f := cmd.Flags()
	f.StringVar(&in.DataDir, "data-dir", "", "Directory holding sales.csv, inventory.csv and offers.csv")
	f.StringVar(&in.Sales, "sales", "", "Path to sales CSV file")
	f.StringVar(&in.Inventory, "inventory", "", "Path to inventory CSV file")
	f.StringVar(&in.Offers, "offers", "", "Path to offers CSV file")
}

func addGoalFlags(cmd *cobra.Command, goal *commands.GoalInput) {
	f := cmd.Flags()
	f.StringVar(&goal.Text, "goal", "", "Goal in free text, e.g. \"budget £8k, 97% service, avoid SupplierB\"")
	f.Float64Var(&goal.Budget, "budget", 8000, "Monthly budget in GBP")
	f.Float64Var(&goal.ServiceTarget, "slt", 0.97, "Service level target in [0,1]")
	f.StringSliceVar(&goal.Excludes, "exclude", nil, "Supplier to exclude (repeatable)")
}

// markGoalFlags records which explicit goal values the user set. Without free text the
// flag defaults always apply.
func markGoalFlags(cmd *cobra.Command, goal *commands.GoalInput) {
	goal.BudgetSet = goal.Text == "" || cmd.Flags().Changed("budget")
	goal.TargetSet = goal.Text == "" || cmd.Flags().Changed("slt")
}

func newPlanCmd(st *state) *cobra.Command {
	var cfg commands.PlanConfig

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the planning pipeline over CSV inputs",
		Example: `  procureplan plan --data-dir ./data
  procureplan plan --sales sales.csv --inventory inventory.csv --offers offers.csv --budget 8000 --slt 0.97
  procureplan plan --data-dir ./data --goal "avoid SupplierB" --format html --out ./report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markGoalFlags(cmd, &cfg.Goal)
			cfg.Stdout = cmd.OutOrStdout()
			return st.withRuntime(cmd, func(rt *commands.Runtime) error {
				return commands.NewPlanCommand(cfg, rt).Execute(cmd.Context())
			})
		},
	}

	addInputFlags(cmd, &cfg.Inputs)
	addGoalFlags(cmd, &cfg.Goal)
	f := cmd.Flags()
	f.StringVar(&cfg.Format, "format", output.FormatText, "Output format: text, json, csv, html")
	f.StringVar(&cfg.OutputDir, "out", "", "Output directory for result files")
	f.BoolVar(&cfg.Critique, "critique", false, "Ask the configured LLM provider to critique the plan")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Show the provenance graph and events")
	return cmd
}

func newOptionsCmd() *cobra.Command {
	var cfg commands.OptionsConfig

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the cost-saver, balanced and service-max plan variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markGoalFlags(cmd, &cfg.Goal)
			cfg.Stdout = cmd.OutOrStdout()
			return commands.NewOptionsCommand(cfg).Execute(cmd.Context())
		},
	}

	addGoalFlags(cmd, &cfg.Goal)
	cmd.Flags().StringVar(&cfg.Format, "format", output.FormatText, "Output format: text, json")
	return cmd
}

func newGoalCmd() *cobra.Command {
	goal := &cobra.Command{
		Use:   "goal",
		Short: "Work with free-text goals",
	}
	goal.AddCommand(&cobra.Command{
		Use:   "parse <text>",
		Short: "Extract budget, service target, categories and exclusions from text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewGoalParseCommand(args[0], cmd.OutOrStdout()).Execute(cmd.Context())
		},
	})
	return goal
}

func newQuestionsCmd(st *state) *cobra.Command {
	var cfg commands.QuestionsConfig

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Rank the missing inputs by value of information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Stdout = cmd.OutOrStdout()
			return st.withRuntime(cmd, func(rt *commands.Runtime) error {
				return commands.NewQuestionsCommand(cfg, rt).Execute(cmd.Context())
			})
		},
	}

	addInputFlags(cmd, &cfg.Inputs)
	f := cmd.Flags()
	f.StringSliceVar(&cfg.Provided, "provided", nil, "Inputs already provided, e.g. sales.csv (repeatable)")
	f.StringVar(&cfg.Format, "format", output.FormatText, "Output format: text, json")
	return cmd
}

func newCritiqueCmd(st *state) *cobra.Command {
	var cfg commands.CritiqueConfig

	cmd := &cobra.Command{
		Use:   "critique",
		Short: "Plan from CSV inputs and print the LLM critique",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markGoalFlags(cmd, &cfg.Goal)
			cfg.Stdout = cmd.OutOrStdout()
			return st.withRuntime(cmd, func(rt *commands.Runtime) error {
				return commands.NewCritiqueCommand(cfg, rt).Execute(cmd.Context())
			})
		},
	}

	addInputFlags(cmd, &cfg.Inputs)
	addGoalFlags(cmd, &cfg.Goal)
	return cmd
}

func newEvalCmd(st *state) *cobra.Command {
	var (
		cfg      commands.EvalConfig
		provider string
	)

	cmd := &cobra.Command{
		Use:   "eval-llm",
		Short: "Measure how often the provider returns a valid critique",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				st.settings.LLM.Provider = provider
			}
			cfg.Stdout = cmd.OutOrStdout()
			return st.withRuntime(cmd, func(rt *commands.Runtime) error {
				return commands.NewEvalCommand(cfg, rt).Execute(cmd.Context())
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.DataFile, "data", "", "JSONL file of {goal, data_summary, base_plan} examples")
	f.StringVar(&provider, "provider", "", "Provider override: mock, ollama, lmstudio, openai, gemini")
	return cmd
}

func newServeCmd(st *state) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withRuntime(cmd, func(rt *commands.Runtime) error {
				return commands.NewServeCommand(addr, rt).Execute(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from HTTP_ADDR or :8000)")
	return cmd
}
