package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	application "github.com/rocketscienceinc/impostor-backend/internal"
	"github.com/rocketscienceinc/impostor-backend/internal/config"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/rocketscienceinc/impostor-backend/internal/impostor"
)

const releaseVersion = "0.1.0"

type localFlags struct {
	players    int
	impostors  int
	categories []string
	names      []string
	dictionary string
	seed       uint64
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "impostor",
		Short:   "Word deduction party game: find the impostor who does not know the secret word.",
		Version: releaseVersion,
	}

	cmd.AddCommand(newServeCmd(), newLocalCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("impostor v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the online room server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf := config.MustLoad(configPath)
			logger := NewLogger(conf.LogLevel)

			if err := application.RunApp(logger, conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "./config.yml", "path to the config file")

	return cmd
}

func newLocalCmd() *cobra.Command {
	flags := &localFlags{}

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Play pass-and-play on this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

			machine, err := newLocalMachine(flags)
			if err != nil {
				return err
			}

			return NewLocalGame(logger, machine, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.IntVarP(&flags.players, "players", "p", 4, "number of players, ignored when --names is given")
	fs.IntVarP(&flags.impostors, "impostors", "i", 1, "number of impostors")
	fs.StringSliceVarP(&flags.categories, "category", "c", nil, "category to draw from, repeatable (default: all)")
	fs.StringSliceVarP(&flags.names, "names", "n", nil, "player names in seat order")
	fs.StringVar(&flags.dictionary, "dictionary", "", "yaml word list replacing the built-in one")
	fs.Uint64Var(&flags.seed, "seed", 0, "seed for a reproducible deal (0: random)")

	return cmd
}

func newLocalMachine(flags *localFlags) (*impostor.Machine, error) {
	dict, err := application.LoadDictionary(flags.dictionary)
	if err != nil {
		return nil, err
	}

	categories := flags.categories
	if len(categories) == 0 {
		categories = dict.IDs()
	}

	src := impostor.DefaultSource
	if flags.seed != 0 {
		src = impostor.NewSeededSource(flags.seed)
	}

	machine := impostor.NewMachine(dict, src, entity.NewMatchConfig(flags.players, 1))

	if len(flags.names) > 0 {
		err = machine.SetRoster(entity.NewLocalRoster(flags.names...))
	} else {
		err = machine.SetPlayerCount(flags.players)
	}
	if err != nil {
		return nil, err
	}

	if err = machine.SetImpostorCount(flags.impostors); err != nil {
		return nil, err
	}

	if err = machine.SetCategories(categories...); err != nil {
		return nil, err
	}

	return machine, nil
}

// NewLogger - JSON logs on stdout at the configured level.
func NewLogger(logLevel string) *slog.Logger {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
