package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bankist-dev/bankist/internal/accounts"
	"github.com/bankist-dev/bankist/internal/activitylog"
	"github.com/bankist-dev/bankist/internal/bankist"
	"github.com/bankist-dev/bankist/internal/format"
	"github.com/bankist-dev/bankist/internal/gitops"
	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/logging"
	"github.com/bankist-dev/bankist/internal/model"
	"github.com/bankist-dev/bankist/internal/session"
)

var errQuit = errors.New("quit")

const shellHelp = `Commands:
  login <id> <pin>         log in
  transfer <to> <amount>   send money to another account
  loan <amount>            request a loan
  close <id> <pin>         close the logged-in account
  sort                     toggle sorting movements by amount
  show                     redraw the dashboard
  logout                   log out
  help                     show this help
  quit                     leave the shell
`

func newShellCommand() *cobra.Command {
	var repoDir string
	var save bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			p, err := loadProject(repoDir)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), p.cfg.Logging.Level)
			if err != nil {
				return err
			}

			return runShell(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), p, shellOptions{
				save:   save,
				logger: logger,
				ticker: session.IntervalTicker{Interval: p.cfg.Session.Tick},
			})
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")
	cmd.Flags().BoolVar(&save, "save", false, "write account state back to the data directory on exit")

	return cmd
}

type shellOptions struct {
	save   bool
	logger *slog.Logger
	ticker session.Ticker
}

type shell struct {
	svc      *bankist.Service
	term     *terminal
	coverage float64
}

func runShell(ctx context.Context, in io.Reader, out io.Writer, p *project, opts shellOptions) error {
	base := opts.logger
	if base == nil {
		base = slog.New(slog.DiscardHandler)
	}
	logger := base.With("component", "shell")

	// Pending loans are dropped when the shell exits.
	sched := ledger.NewTimerScheduler()
	defer sched.Stop()

	l, err := ledger.New(p.accounts,
		ledger.WithScheduler(sched),
		ledger.WithLoanPolicy(decimal.NewFromFloat(p.cfg.Loans.CoveragePercent), p.cfg.Loans.DelayMin, p.cfg.Loans.DelayMax),
		ledger.WithLogger(base),
	)
	if err != nil {
		return fmt.Errorf("building ledger: %w", err)
	}

	logger.Info("shell started", "project", p.root, "accounts", len(p.accounts))

	term := newTerminal(out)
	svcOpts := []bankist.Option{
		bankist.WithRecorder(activitylog.NewFileRecorder(p.activityLog())),
		bankist.WithLogger(base),
		bankist.WithSessionDuration(p.cfg.Session.DurationSeconds),
	}
	if opts.ticker != nil {
		svcOpts = append(svcOpts, bankist.WithTicker(opts.ticker))
	}
	sh := &shell{svc: bankist.New(l, term, svcOpts...), term: term, coverage: p.cfg.Loans.CoveragePercent}

	term.printf("Welcome to Bankist. Type 'help' for commands.\n")

	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan string)
	go readLines(gctx, in, lines, logger)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case line, ok := <-lines:
				if !ok {
					return errQuit
				}
				if sh.exec(line) {
					return errQuit
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		// Leaving the shell ends the session like an explicit logout.
		_ = sh.svc.Logout()
		return nil
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		return err
	}

	if opts.save {
		accts := l.Accounts()
		if err := accounts.Save(p.dataDir(), accts); err != nil {
			return fmt.Errorf("saving accounts: %w", err)
		}
		term.printf("Saved %d accounts to %s\n", len(accts), p.dataDir())

		if gitops.IsRepo(p.root) {
			hash, err := gitops.CommitAll(p.root, fmt.Sprintf("save: %d accounts", len(accts)), gitAuthor(p.cfg), p.cfg.Data.Dir)
			switch {
			case errors.Is(err, gitops.ErrNothingToCommit):
				// Unchanged since the last snapshot.
			case err != nil:
				return fmt.Errorf("committing accounts: %w", err)
			default:
				term.printf("Committed %s\n", hash)
			}
		}
	}
	term.printf("Bye.\n")
	return nil
}

// readLines feeds input lines to the shell loop until EOF. A Scan blocked on
// an interactive stdin is not interruptible, so after cancellation the
// goroutine lingers until the next line or process exit. Hosts that run the
// shell repeatedly in one process should pass a reader they can close.
func readLines(ctx context.Context, in io.Reader, lines chan<- string, logger *slog.Logger) {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		logger.Warn("reading input", "error", err)
	}
}

// exec runs one input line. It reports whether the shell should exit.
func (sh *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		sh.term.printf("%s", shellHelp)
	case "login":
		err = sh.login(args)
	case "logout":
		err = sh.svc.Logout()
	case "transfer":
		err = sh.transfer(args)
	case "loan":
		err = sh.loan(args)
	case "close":
		err = sh.close(args)
	case "sort":
		err = sh.svc.ToggleSort()
	case "show":
		err = sh.show()
	default:
		err = fmt.Errorf("unknown command %q (try 'help')", cmd)
	}

	if err != nil {
		sh.term.printf("error: %s\n", sh.describe(err))
	}
	return false
}

func (sh *shell) login(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <id> <pin>")
	}
	return sh.svc.Login(args[0], args[1])
}

func (sh *shell) transfer(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: transfer <to> <amount>")
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	return sh.svc.Transfer(args[0], amount)
}

func (sh *shell) loan(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: loan <amount>")
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	delay, err := sh.svc.RequestLoan(amount)
	if err != nil {
		return err
	}

	if d, err := sh.svc.Current(); err == nil {
		sh.term.printf("Loan of %s approved, arriving in %s.\n",
			format.Money(amount, d.View.Currency, d.View.Locale), delay.Round(100*time.Millisecond))
	}
	return nil
}

func (sh *shell) close(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: close <id> <pin>")
	}
	return sh.svc.CloseAccount(args[0], args[1])
}

func (sh *shell) show() error {
	d, err := sh.svc.Current()
	if err != nil {
		return err
	}
	sh.term.Render(d)
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if !model.WholeCents(amount) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: at most 2 decimal places", s)
	}
	return amount, nil
}

// describe turns service errors into short messages for the prompt.
func (sh *shell) describe(err error) string {
	switch {
	case errors.Is(err, ledger.ErrCredentialsNotFound):
		return "wrong login or PIN"
	case errors.Is(err, bankist.ErrNoSession):
		return "log in first"
	case errors.Is(err, ledger.ErrLoanRejected):
		return fmt.Sprintf("loan rejected: no single deposit covers %g%% of that amount", sh.coverage)
	default:
		return err.Error()
	}
}
