package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/eportfolio/internal/buildinfo"
	"github.com/dmitrijs2005/eportfolio/internal/client/config"
	"github.com/dmitrijs2005/eportfolio/internal/client/query"
	"github.com/dmitrijs2005/eportfolio/internal/client/services"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
	"github.com/spf13/cobra"
)

// session owns the App built for one process run.
type session struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	app    *App
}

// Execute runs the command line args and returns the first error, after
// printing it for the user.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	s := &session{in: in, out: out, errOut: errOut}
	defer s.close()

	root := s.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(errOut, "Error:", services.Describe(err))
	}
	return err
}

func (s *session) close() {
	if s.app != nil {
		_ = s.app.Close()
		s.app = nil
	}
}

func (s *session) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "eportfolio",
		Short:         "Keep CV versions locally and mirror the primary one to your public portfolio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["noapp"] == "true" {
				return nil
			}
			return s.open(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	config.RegisterFlags(root.PersistentFlags())
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.errOut)

	root.AddCommand(appCommands(func() *App { return s.app })...)
	root.AddCommand(s.shellCommand(), versionCommand())
	return root
}

func (s *session) open(cmd *cobra.Command) error {
	if s.app != nil {
		return nil
	}
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(s.errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	s.app, err = NewApp(cmd.Context(), cfg, s.in, s.out, logger)
	return err
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"noapp": "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// appCommands builds the commands that act on an App. get is read when a
// command runs, after the App has been opened.
func appCommands(get func() *App) []*cobra.Command {
	var (
		search, sortBy, order string
		all                   bool
	)

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List CVs, primary first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().List(cmd.Context(), search, sortBy, order)
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "filter by title, profession or city")
	list.Flags().StringVar(&sortBy, "sort", "", "sort key: title, createdAt, updatedAt (default updatedAt)")
	list.Flags().StringVar(&order, "order", "", "asc or desc (default desc)")

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a CV (the primary one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Show(cmd.Context(), optional(args))
		},
	}

	var createFlags draftFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a CV; it becomes the primary one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			var d services.Draft
			if err := createFlags.apply(cmd, &d); err != nil {
				return err
			}
			if createFlags.interactive {
				if err := a.prompt(&d); err != nil {
					return err
				}
			}
			return a.Create(cmd.Context(), d)
		},
	}
	createFlags.register(create)

	var editFlags draftFlags
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a CV; only the given fields are replaced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			doc, err := a.find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d := services.DraftOf(doc)
			if err := editFlags.apply(cmd, &d); err != nil {
				return err
			}
			if editFlags.interactive {
				if err := a.prompt(&d); err != nil {
					return err
				}
			}
			return a.Edit(cmd.Context(), doc.ID, d)
		},
	}
	editFlags.register(edit)

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a CV",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Delete(cmd.Context(), args[0])
		},
	}

	primary := &cobra.Command{
		Use:   "primary <id>",
		Short: "Make a CV the primary one and publish it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().SetPrimary(cmd.Context(), args[0])
		},
	}

	resync := &cobra.Command{
		Use:   "resync",
		Short: "Push the primary CV to the backend again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().Resync(cmd.Context())
		},
	}

	compare := &cobra.Command{
		Use:   "compare <left-id> <right-id>",
		Short: "Compare two CV versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Compare(cmd.Context(), args[0], args[1])
		},
	}

	exp := &cobra.Command{
		Use:   "export [id]",
		Short: "Write a CV as PDF (the primary one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all does not take an id")
			}
			return get().Export(cmd.Context(), optional(args), all)
		},
	}
	exp.Flags().BoolVar(&all, "all", false, "export every CV")

	publish := &cobra.Command{
		Use:   "publish [id]",
		Short: "Upload a CV as PDF and print a share link",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Publish(cmd.Context(), optional(args))
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show activity counters and badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().Stats(cmd.Context())
		},
	}

	var projSort, projOrder, certSort, certOrder string
	public := &cobra.Command{
		Use:   "show-public <user-id>",
		Short: "Show the public profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pp, err := query.ParseParams(search, projSort, projOrder, query.ProjectSortKeys)
			if err != nil {
				return err
			}
			cp, err := query.ParseParams(search, certSort, certOrder, query.CertificateSortKeys)
			if err != nil {
				return err
			}
			return get().ShowPublic(cmd.Context(), args[0], pp, cp)
		},
	}
	public.Flags().StringVarP(&search, "search", "s", "", "filter projects and certificates")
	public.Flags().StringVar(&projSort, "project-sort", "", "project sort key: title, createdAt, updatedAt")
	public.Flags().StringVar(&projOrder, "project-order", "", "asc or desc")
	public.Flags().StringVar(&certSort, "cert-sort", "", "certificate sort key: name, createdAt, issueDate")
	public.Flags().StringVar(&certOrder, "cert-order", "", "asc or desc")

	login := &cobra.Command{
		Use:   "login [token]",
		Short: "Store the access token issued by the portfolio site",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().Login(cmd.Context(), optional(args))
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().Logout(cmd.Context())
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return get().Whoami(cmd.Context())
		},
	}

	return []*cobra.Command{list, show, create, edit, del, primary, resync, compare, exp, publish, stats, public, login, logout, whoami}
}

func optional(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
