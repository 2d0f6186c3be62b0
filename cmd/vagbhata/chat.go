package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"vagbhata/internal/chatbot"
	"vagbhata/internal/types"
)

// Chat UI styles.
var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8BC34A")).
			Padding(0, 2)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	currentStyle = lipgloss.NewStyle().Bold(true)
)

const chatHelp = `Commands:
  /new            start a fresh thread
  /threads        list your threads
  /switch <n>     switch to thread number n (from /threads)
  /history        replay the current thread
  /help           show this help
  /quit           exit`

// runChat drives the interactive REPL. Each turn goes through the full
// dialogue loop: the model decides whether to consult the sources before
// answering, and the whole exchange is checkpointed per thread.
func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp("RETRIEVAL_QUERY")
	if err != nil {
		return err
	}
	defer a.Close()

	session := chatbot.NewSession(identity, a.store, logger)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	who := session.Identity
	if who == "" {
		who = "anonymous"
	}
	fmt.Println(bannerStyle.Render(fmt.Sprintf(
		"Vagbhata Wisdom Bot\nmodel: %s · corpus: %s\nuser: %s · type /help for commands",
		a.cfg.LLM.Model, a.cfg.Memory.DatabasePath, who)))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := handleCommand(a, session, line); done {
				return nil
			}
			continue
		}

		answer, err := a.bot.SendMessage(ctx, session.ThreadID, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println(mutedStyle.Render("interrupted"))
				return nil
			}
			fmt.Println(errorStyle.Render("error: " + err.Error()))
			continue
		}
		printAnswer(renderer, answer)
	}
}

func handleCommand(a *app, session *chatbot.Session, line string) (done bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println(chatHelp)
	case "/new":
		id := session.StartThread()
		fmt.Println(mutedStyle.Render("started new thread " + id))
	case "/threads":
		printThreads(session)
	case "/switch":
		if len(fields) < 2 {
			fmt.Println(errorStyle.Render("usage: /switch <n>"))
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(session.Threads) {
			fmt.Println(errorStyle.Render("no such thread; run /threads first"))
			return false
		}
		if !session.Switch(session.Threads[n-1]) {
			fmt.Println(errorStyle.Render("no such thread; run /threads first"))
			return false
		}
		fmt.Println(mutedStyle.Render("switched to " + session.ThreadName(session.ThreadID, chatbot.DefaultThreadNameLength)))
	case "/history":
		printHistory(a, session)
	default:
		fmt.Println(errorStyle.Render("unknown command; type /help"))
	}
	return false
}

func printThreads(session *chatbot.Session) {
	for i, id := range session.Threads {
		name := session.ThreadName(id, chatbot.DefaultThreadNameLength)
		row := fmt.Sprintf("%3d. %s", i+1, name)
		if id == session.ThreadID {
			fmt.Println(currentStyle.Render(row + "  (current)"))
		} else {
			fmt.Println(row)
		}
	}
}

func printHistory(a *app, session *chatbot.Session) {
	msgs, err := a.bot.History(session.ThreadID)
	if err != nil {
		fmt.Println(errorStyle.Render("error: " + err.Error()))
		return
	}
	for _, m := range msgs {
		switch m.Role {
		case types.RoleUser:
			fmt.Println(promptStyle.Render("you> ") + m.Content)
		case types.RoleAssistant:
			if m.Content != "" {
				fmt.Println("bot> " + chatbot.Normalize(m.Content))
			}
		}
	}
}

func printAnswer(renderer *glamour.TermRenderer, answer string) {
	if renderer != nil {
		if out, err := renderer.Render(answer); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(answer)
}
