package cli

import (
	"bufio"
	"context"
	"fmt"

	"github.com/dmitrijs2005/eportfolio/internal/client/config"
	"github.com/dmitrijs2005/eportfolio/internal/client/services"
	"github.com/dmitrijs2005/eportfolio/internal/flagx"
	"github.com/spf13/cobra"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execFn runs one shell line, already split into arguments.
type execFn func(ctx context.Context, args []string) error

// runREPL starts a read-eval-print loop.
//
// Each line is split shell-style (quotes group words) and handed to exec.
// Global flags are configuration and cannot change inside a running shell, so
// they are stripped with a notice. The loop exits on EOF, on "exit" or "quit",
// or when ctx is done. Command errors are printed and the loop continues.
// Lines are read directly from reader, which interactive prompts share.
func runREPL(ctx context.Context, exec execFn, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cv%s> ", statusFn()))
		if ctx.Err() != nil {
			return
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		args, err := flagx.Split(line)
		if err != nil {
			printlnFn("Error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "shell":
			printlnFn("Already in the shell.")
			continue
		}

		kept := flagx.DropArgs(args, config.GlobalFlags)
		if len(kept) != len(args) {
			printlnFn("Global flags are ignored inside the shell.")
		}

		if err := exec(ctx, kept); err != nil {
			printlnFn("Error:", services.Describe(err))
		}
	}
}

func (s *session) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			printlnFn("Welcome to the eportfolio shell (type 'help' for commands)")
			a.documents(cmd.Context())
			runREPL(cmd.Context(), s.execLine, a.status, a.reader)
			return nil
		},
	}
}

// execLine runs args against a fresh command tree bound to the open App, so
// flag values never leak from one line to the next.
func (s *session) execLine(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:           "cv",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(s.out)
	root.SetErr(s.out)
	root.AddCommand(appCommands(func() *App { return s.app })...)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
