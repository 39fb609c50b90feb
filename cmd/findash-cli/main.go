// Command findash-cli is a terminal client for the finance backend: manage
// the session, list and record transactions, and inspect analytics without
// running the web dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"findash/internal/api"
	"findash/internal/auth"
	"findash/internal/cli"
	"findash/internal/config"
	"findash/internal/core"
	"findash/internal/log"
)

const usage = `Usage: findash-cli <command> [flags]

Session:
  login     -email <addr> -password <pw>
  logout
  whoami
  refresh

Transactions:
  tx list   [-limit n] [-category <name>]
  tx add    -desc <text> -amount <n.nn> -category <name> [-type expense|income] [-date YYYY-MM-DD] [-recurring]
  tx rm     -id <n>

Analytics:
  analysis  [-months n]
  alerts
  health

Backend:
  ping
`

type app struct {
	cfg      *config.Config
	logger   *log.Logger
	store    auth.Store
	client   *api.Client
	sessions *auth.Manager
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	store, err := auth.NewFileStore(cfg.TokenFile)
	if err != nil {
		fatal("initialize credential store: %v", err)
	}
	client := cli.InitAPIClient(logger, cfg, store)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		client:   client,
		sessions: auth.NewManager(store, client, logger),
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
	defer cancel()

	switch os.Args[1] {
	case "login":
		a.cmdLogin(ctx, os.Args[2:])
	case "logout":
		a.cmdLogout(ctx)
	case "whoami":
		a.cmdWhoami(ctx)
	case "refresh":
		a.cmdRefresh(ctx)
	case "tx":
		a.cmdTx(ctx, os.Args[2:])
	case "analysis":
		a.cmdAnalysis(ctx, os.Args[2:])
	case "alerts":
		a.cmdAlerts(ctx)
	case "health":
		a.cmdHealth(ctx)
	case "ping":
		a.cmdHealth(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "findash-cli: "+format+"\n", args...)
	os.Exit(1)
}

// fatalAPI renders client errors in user terms.
func fatalAPI(err error) {
	switch {
	case api.IsAuthExpired(err):
		fatal("session expired, run `findash-cli login` again")
	case api.IsTransport(err):
		fatal("backend unreachable: %v", err)
	default:
		fatal("%v", err)
	}
}

// requireSession restores the persisted session or exits.
func (a *app) requireSession(ctx context.Context) auth.Session {
	if err := a.sessions.Restore(ctx); err != nil {
		fatal("restore session: %v", err)
	}
	session, state := a.sessions.Current()
	if state != auth.StateAuthenticated {
		fatal("not logged in, run `findash-cli login -email ... -password ...`")
	}
	return session
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		fatal("login requires -email and -password")
	}
	if err := a.sessions.Login(ctx, *email, *password); err != nil {
		fatalAPI(err)
	}
	session, _ := a.sessions.Current()
	fmt.Printf("Logged in as %s <%s>\n", session.Name, session.Email)
}

func (a *app) cmdLogout(ctx context.Context) {
	if err := a.sessions.Restore(ctx); err != nil {
		fatal("restore session: %v", err)
	}
	a.sessions.Logout(ctx)
	fmt.Println("Logged out")
}

func (a *app) cmdWhoami(ctx context.Context) {
	session := a.requireSession(ctx)
	fmt.Printf("%s <%s> (user %d)\n", session.Name, session.Email, session.UserID)
}

func (a *app) cmdRefresh(ctx context.Context) {
	a.requireSession(ctx)
	if err := a.sessions.Refresh(ctx); err != nil {
		fatalAPI(err)
	}
	fmt.Println("Token refreshed")
}

func (a *app) cmdTx(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	switch args[0] {
	case "list":
		a.cmdTxList(ctx, args[1:])
	case "add":
		a.cmdTxAdd(ctx, args[1:])
	case "rm":
		a.cmdTxRm(ctx, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func (a *app) cmdTxList(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("tx list", flag.ExitOnError)
	limit := fs.Int("limit", 25, "maximum transactions to show")
	category := fs.String("category", "", "only transactions in this category")
	_ = fs.Parse(args)

	session := a.requireSession(ctx)
	var txs []core.Transaction
	var err error
	if *category != "" {
		txs, err = a.client.TransactionsByCategory(ctx, session.UserID, *category)
	} else {
		txs, err = a.client.ListTransactions(ctx, session.UserID, api.ListOptions{Limit: *limit})
	}
	if err != nil {
		fatalAPI(err)
	}
	if len(txs) == 0 {
		fmt.Println("No transactions")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, tx := range txs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Date.String(), tx.Type, tx.Amount.String(), tx.Category, tx.Description)
	}
	_ = w.Flush()
}

func (a *app) cmdTxAdd(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("tx add", flag.ExitOnError)
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	category := fs.String("category", "", "category")
	txType := fs.String("type", "expense", "expense or income")
	date := fs.String("date", "", "date (YYYY-MM-DD, default today)")
	recurring := fs.Bool("recurring", false, "mark as recurring")
	_ = fs.Parse(args)

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		fatal("invalid amount %q: %v", *amount, err)
	}
	var txDate core.Date
	if *date == "" {
		now := time.Now()
		txDate = core.NewDate(now.Year(), int(now.Month()), now.Day())
	} else {
		txDate, err = core.ParseDate(*date)
		if err != nil {
			fatal("invalid date %q", *date)
		}
	}

	tx := core.Transaction{
		Description: *desc,
		Amount:      core.Money{Cents: cents},
		Category:    *category,
		Type:        core.TransactionType(*txType),
		Date:        txDate,
		IsRecurring: *recurring,
	}
	if err := tx.Validate(); err != nil {
		fatal("invalid transaction: %v", err)
	}

	session := a.requireSession(ctx)
	created, err := a.client.CreateTransaction(ctx, session.UserID, tx)
	if err != nil {
		fatalAPI(err)
	}
	fmt.Printf("Recorded #%d: %s %s (%s)\n", created.ID, created.Description, created.Amount.String(), created.Category)
}

func (a *app) cmdTxRm(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("tx rm", flag.ExitOnError)
	id := fs.Int64("id", 0, "transaction id")
	_ = fs.Parse(args)
	if *id <= 0 {
		fatal("tx rm requires -id")
	}

	session := a.requireSession(ctx)
	if err := a.client.DeleteTransaction(ctx, session.UserID, *id); err != nil {
		fatalAPI(err)
	}
	fmt.Printf("Deleted transaction #%d\n", *id)
}

func (a *app) cmdAnalysis(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("analysis", flag.ExitOnError)
	months := fs.Int("months", 6, "months of history")
	_ = fs.Parse(args)

	session := a.requireSession(ctx)
	analysis, err := a.client.SpendingAnalysis(ctx, session.UserID, *months)
	if err != nil {
		fatalAPI(err)
	}
	fmt.Printf("Last %d months: income %s, expenses %s, savings rate %.1f%% (%d transactions)\n",
		*months, analysis.TotalIncome.String(), analysis.TotalExpenses.String(),
		analysis.SavingsRate, analysis.TransactionCount)
	for _, c := range analysis.TopCategories {
		fmt.Printf("  %-16s %10s  %.1f%%\n", c.Category, c.Amount.String(), c.Percentage)
	}
}

func (a *app) cmdAlerts(ctx context.Context) {
	session := a.requireSession(ctx)
	alerts, err := a.client.BudgetAlerts(ctx, session.UserID)
	if err != nil {
		fatalAPI(err)
	}
	if len(alerts) == 0 {
		fmt.Println("No budget alerts")
		return
	}
	for _, alert := range alerts {
		fmt.Printf("[%s] %s: %s of %s (%.0f%%), %s left, %d days remaining\n",
			alert.Level(), alert.Category, alert.CurrentSpend.String(),
			alert.BudgetLimit.String(), alert.PercentageUsed,
			alert.Remaining.String(), alert.DaysRemaining)
	}
}

func (a *app) cmdHealth(ctx context.Context) {
	status, err := a.client.Health(ctx)
	if err != nil {
		fatalAPI(err)
	}
	fmt.Printf("Backend: %s (database: %s)\n", status.Status, status.Database)
}
