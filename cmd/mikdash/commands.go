package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nathoo/mikdash/catalog"
	"github.com/nathoo/mikdash/cli"
	"github.com/nathoo/mikdash/config"
	"github.com/nathoo/mikdash/engine"
	"github.com/nathoo/mikdash/engine/state"
	"github.com/nathoo/mikdash/loader"
	"github.com/nathoo/mikdash/store"
	"github.com/nathoo/mikdash/tui"
	"github.com/nathoo/mikdash/types"
)

const defaultProfileName = "Kohen"

// app carries settings shared by every subcommand.
type app struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var opts playOptions

	root := &cobra.Command{
		Use:           "mikdash",
		Short:         "Perform the Temple service in a terminal courtyard",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.play(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML settings file")
	opts.bind(root)

	root.AddCommand(
		newPlayCmd(a),
		newProfilesCmd(a),
		newCatalogCmd(a),
	)
	return root
}

type playOptions struct {
	profile string
	level   int
	plain   bool
	trace   bool
	script  string
}

func (o *playOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.profile, "profile", "p", "", "profile name or ID (created if missing)")
	cmd.Flags().IntVar(&o.level, "level", 1, "level for a newly created profile (1 or 2)")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "line-oriented output instead of the full-screen UI")
	cmd.Flags().BoolVar(&o.trace, "trace", false, "print engine events after each command")
	cmd.Flags().StringVar(&o.script, "script", "", "replay commands from a file")
}

func newPlayCmd(a *app) *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Enter the Azara and serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.play(cmd, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (a *app) play(cmd *cobra.Command, opts playOptions) error {
	ctx := cmd.Context()
	interactive := opts.script == "" && !opts.plain && isTerminal()

	// The full-screen UI owns the terminal, so its logs go to LogFile or nowhere.
	var fallback io.Writer
	if !interactive {
		fallback = cmd.ErrOrStderr()
	}
	logger, closeLog, err := a.cfg.NewLogger(fallback)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	defs, err := a.loadDefs()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	st, closeDB, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := pickProfile(ctx, st, a.cfg, opts, interactive)
	if err != nil {
		return err
	}

	l := state.NewLedger(defs, p.Level)
	l.Coins = p.Coins
	eng := engine.New(defs, l, engine.Options{
		Zones:     a.cfg.Zones(),
		Store:     st,
		ProfileID: p.ID,
		Logger:    logger,
	})
	restored, err := eng.Restore(ctx)
	if err != nil {
		return err
	}
	logger.Info("profile loaded", "profile", p.Name, "id", p.ID, "restored", restored)

	if interactive {
		return tui.Run(eng, defs, tui.Options{Autosave: a.cfg.Autosave})
	}

	c := cli.New(eng, defs)
	c.In = cmd.InOrStdin()
	c.Out = cmd.OutOrStdout()
	c.Trace = opts.trace
	if opts.script != "" {
		f, err := os.Open(opts.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	fmt.Fprintf(c.Out, "%s\n\n", gameHeader(defs.Game))
	c.Run()
	return nil
}

func gameHeader(g types.GameDef) string {
	header := g.Title
	if g.Version != "" {
		header += " v" + g.Version
	}
	if g.Author != "" {
		header += " by " + g.Author
	}
	return header
}

func (a *app) loadDefs() (*state.Defs, error) {
	if a.cfg.CatalogDir != "" {
		return loader.Load(a.cfg.CatalogDir)
	}
	return loader.LoadFS(catalog.FS, ".")
}

func (a *app) openStore() (*store.SQLite, func() error, error) {
	db, err := store.OpenDB(a.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSQLite(db, store.Options{MaxProfiles: a.cfg.MaxProfiles}), db.Close, nil
}

// pickProfile resolves which profile to play. A named profile that does not
// exist yet is created; with no name the most recent one is used, or the
// player chooses when several exist and a terminal is attached.
func pickProfile(ctx context.Context, st *store.SQLite, cfg config.Config, opts playOptions, interactive bool) (*types.Profile, error) {
	profiles, err := st.List(ctx)
	if err != nil {
		return nil, err
	}

	if opts.profile != "" {
		if p := findProfile(profiles, opts.profile); p != nil {
			return p, nil
		}
		return st.Create(ctx, opts.profile, opts.level, cfg.StartingCoins)
	}

	switch {
	case len(profiles) == 0:
		return st.Create(ctx, defaultProfileName, opts.level, cfg.StartingCoins)
	case len(profiles) == 1 || !interactive:
		return profiles[0], nil
	}
	return chooseProfile(profiles)
}

func chooseProfile(profiles []*types.Profile) (*types.Profile, error) {
	options := make([]huh.Option[string], 0, len(profiles))
	for _, p := range profiles {
		options = append(options, huh.NewOption(profileLabel(p), p.ID))
	}

	id := profiles[0].ID
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Who serves today?").
				Options(options...).
				Value(&id),
		),
	).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return nil, err
	}
	return findProfile(profiles, id), nil
}

// findProfile matches an exact ID or a case-insensitive name.
func findProfile(profiles []*types.Profile, ref string) *types.Profile {
	for _, p := range profiles {
		if p.ID == ref {
			return p
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, ref) {
			return p
		}
	}
	return nil
}

func profileLabel(p *types.Profile) string {
	return fmt.Sprintf("%s  Lv %d  🪙%d  %d korbanot", p.Name, p.Level, p.Coins, p.Offerings)
}

func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "Manage saved Kohanim",
	}
	cmd.AddCommand(
		newProfilesListCmd(a),
		newProfilesCreateCmd(a),
		newProfilesDeleteCmd(a),
	)
	return cmd
}

func newProfilesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles, most recently played first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeDB, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			profiles, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No profiles yet. Run 'mikdash play' to create one.")
				return nil
			}
			for _, p := range profiles {
				fmt.Fprintf(out, "%s  %s  (last played %s)\n",
					p.ID, profileLabel(p), p.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newProfilesCreateCmd(a *app) *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeDB, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			p, err := st.Create(cmd.Context(), args[0], level, a.cfg.StartingCoins)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s).\n", p.Name, p.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 1, "starting level (1 or 2)")
	return cmd
}

func newProfilesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete a profile and its save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeDB, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			profiles, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			p := findProfile(profiles, args[0])
			if p == nil {
				return fmt.Errorf("%w: %s", store.ErrNotFound, args[0])
			}
			if err := st.Delete(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", p.Name)
			return nil
		},
	}
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show the korbanot and Shimon's wares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := a.loadDefs()
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			printCatalog(cmd.OutOrStdout(), defs)
			return nil
		},
	}
}

func printCatalog(w io.Writer, defs *state.Defs) {
	offerings := make([]types.OfferingDef, 0, len(defs.Offerings))
	for _, o := range defs.Offerings {
		offerings = append(offerings, o)
	}
	slices.SortFunc(offerings, func(x, y types.OfferingDef) int { return x.SourceOrder - y.SourceOrder })

	fmt.Fprintln(w, "Korbanot:")
	for _, o := range offerings {
		fmt.Fprintf(w, "  %-14s %s %s  lvl %d  🪙%d  [%s]\n",
			o.ID, o.Emoji, o.Name, max(o.LevelRequired, 1), o.CoinReward, o.Animal)
	}

	items := make([]types.ItemDef, 0, len(defs.Items))
	for _, it := range defs.Items {
		items = append(items, it)
	}
	slices.SortFunc(items, func(x, y types.ItemDef) int {
		if c := strings.Compare(x.Category, y.Category); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})

	fmt.Fprintln(w, "\nShimon's stall:")
	for _, it := range items {
		fmt.Fprintf(w, "  %-14s %s %s  🪙%d  lvl %d\n",
			it.ID, it.Emoji, it.Name, it.Price, max(it.LevelRequired, 1))
	}
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
