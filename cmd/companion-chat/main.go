// companion-chat is a terminal client for poking at the session core without
// the web front-end: it drives the same manager the API serves, against
// in-memory or SQLite storage.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/MahaveerPandey8290/health-app/internal/adapters/llm"
	memstore "github.com/MahaveerPandey8290/health-app/internal/adapters/storage/memory"
	sqlitestore "github.com/MahaveerPandey8290/health-app/internal/adapters/storage/sqlite"
	"github.com/MahaveerPandey8290/health-app/internal/app/history"
	"github.com/MahaveerPandey8290/health-app/internal/app/session"
	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

var (
	userID      = flag.String("user", "local-user", "User id for the session")
	displayName = flag.String("name", "Friend", "Display name the companion greets you by")
	mode        = flag.String("mode", "tea", "Starting mode: tea or study")
	dbPath      = flag.String("db", "", "SQLite path for durable storage (empty = in-memory)")
	useGemini   = flag.Bool("gemini", false, "Use the real Gemini client instead of the mock")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	startMode, err := domain.ParseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var genClient domain.GenerationClient = llm.NewMockClient()
	if *useGemini {
		genClient, err = llm.NewGeminiClient(ctx,
			os.Getenv("COMPANION_GCP_PROJECT"),
			os.Getenv("COMPANION_GCP_LOCATION"),
			os.Getenv("COMPANION_MODEL_NAME"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "gemini:", err)
			os.Exit(1)
		}
	}

	var (
		scratchStore domain.ScratchStore
		historyStore domain.HistoryStore
	)
	if *dbPath != "" {
		store, err := sqlitestore.NewStore(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sqlite:", err)
			os.Exit(1)
		}
		defer store.Close()
		scratchStore, historyStore = store, store
	} else {
		scratchStore = memstore.NewScratchStore()
		historyStore = memstore.NewHistoryStore()
	}

	mgr := session.NewManager(genClient, scratchStore, historyStore)
	historySvc := history.NewService(historyStore)

	companion := color.New(color.FgMagenta, color.Bold).SprintFunc()
	you := color.New(color.FgGreen, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	out, err := mgr.Start(ctx, session.StartInput{
		UserID:      domain.UserID(*userID),
		DisplayName: *displayName,
		Mode:        startMode,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sess := out.Session

	fmt.Println(companion("AI Wellness Companion"))
	fmt.Println(dim("Commands: /mode tea|study, /save, /discard, /history, /quit"))
	fmt.Println()
	fmt.Printf("%s %s\n", companion("Companion:"), sess.Messages[0].Text)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(you("You: "))
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			var quit bool
			sess, quit = runCommand(ctx, mgr, historySvc, scanner, sess, input, companion, dim)
			if quit {
				return
			}
			continue
		}

		reply, err := mgr.Send(ctx, session.SendInput{SessionID: sess.ID, Text: input})
		if err != nil {
			var genErr *domain.GenerationError
			if errors.As(err, &genErr) {
				fmt.Println(dim("the companion could not respond; your message was not sent, try again"))
				continue
			}
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if reply.MirrorWarning != nil {
			fmt.Println(dim("(backup sync failed, conversation continues locally)"))
		}
		fmt.Printf("%s %s\n", companion("Companion:"), reply.AssistantMessage.Text)
	}
}

func runCommand(
	ctx context.Context,
	mgr *session.Manager,
	historySvc *history.Service,
	scanner *bufio.Scanner,
	sess *domain.Session,
	input string,
	companion, dim func(...any) string,
) (*domain.Session, bool) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return sess, true

	case "/save":
		out, err := mgr.Save(ctx, sess.ID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return sess, false
		}
		if !out.Saved {
			fmt.Println(dim("nothing to save yet"))
			return sess, false
		}
		fmt.Println(dim("saved: " + out.Entry.Title))
		return sess, false

	case "/discard":
		if err := mgr.Discard(ctx, sess.ID); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		out, err := mgr.Start(ctx, session.StartInput{
			UserID:      sess.UserID,
			DisplayName: sess.DisplayName,
			Mode:        sess.Mode,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return sess, true
		}
		fmt.Printf("%s %s\n", companion("Companion:"), out.Session.Messages[0].Text)
		return out.Session, false

	case "/history":
		entries, err := historySvc.ListForUser(ctx, sess.UserID, 0)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return sess, false
		}
		if len(entries) == 0 {
			fmt.Println(dim("no saved conversations yet"))
			return sess, false
		}
		for _, e := range entries {
			fmt.Printf("%s [%s] %s\n", dim(e.SavedAt.Format("2006-01-02 15:04")), e.Mode, e.Title)
		}
		return sess, false

	case "/mode":
		if len(fields) != 2 {
			fmt.Println(dim("usage: /mode tea|study"))
			return sess, false
		}
		newMode, err := domain.ParseMode(fields[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return sess, false
		}
		out, err := mgr.SwitchMode(ctx, session.SwitchInput{SessionID: sess.ID, NewMode: newMode})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return sess, false
		}
		if !out.RequiresConfirmation {
			if out.Session.ID != sess.ID {
				fmt.Printf("%s %s\n", companion("Companion:"), out.Session.Messages[0].Text)
			}
			return out.Session, false
		}

		fmt.Print(dim("unsaved conversation: save, discard or cancel? "))
		if !scanner.Scan() {
			return sess, true
		}
		var decision session.Decision
		switch strings.TrimSpace(scanner.Text()) {
		case "save":
			decision = session.DecisionSave
		case "discard":
			decision = session.DecisionDiscard
		default:
			decision = session.DecisionCancel
		}
		res, err := mgr.ResolveSwitch(ctx, session.ResolveInput{SessionID: sess.ID, Decision: decision})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return sess, false
		}
		if res.Session.ID != sess.ID {
			fmt.Printf("%s %s\n", companion("Companion:"), res.Session.Messages[0].Text)
		}
		return res.Session, false

	default:
		fmt.Println(dim("unknown command"))
		return sess, false
	}
}
