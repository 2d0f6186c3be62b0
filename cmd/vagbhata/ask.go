package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vagbhata/internal/chatbot"
)

var askThread string

// askCmd answers a single question and exits. With --thread the question
// continues an existing conversation instead of starting a throwaway one.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Long: `Sends one question through the full dialogue loop and prints the
grounded answer. The exchange is checkpointed like any chat turn, so a
follow-up with the same --thread resumes where it left off.

Example:
  vagbhata ask "What does Vagbhata say about drinking cold water after meals?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askThread, "thread", "", "Thread ID to continue (default: a new thread)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp("RETRIEVAL_QUERY")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	threadID := askThread
	if threadID == "" {
		threadID = chatbot.NewThreadID(identity)
	}

	question := strings.Join(args, " ")
	answer, err := a.bot.SendMessage(ctx, threadID, question)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
