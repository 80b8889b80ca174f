package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Entropy136/intention-test-extension/internal/common/cnst"
	"github.com/Entropy136/intention-test-extension/internal/dataset"
	"github.com/Entropy136/intention-test-extension/internal/session"
	"github.com/Entropy136/intention-test-extension/pkg/llm"

	"go.uber.org/zap"
)

// ErrStopped reports that the client cancelled the session before the work
// loop finished.
var ErrStopped = errors.New("generation stopped by client")

// Runner drives the generation work loop for one session at a time. It is
// the executor collaborator of the session core: between model calls it
// polls ShouldStop and pushes transcript updates through the session's
// writer.
type Runner struct {
	logger    *zap.Logger
	client    llm.Completer
	prompts   *dataset.Builder
	maxRounds int
}

var _ session.Executor = (*Runner)(nil)

// NewRunner creates a work-loop runner.
func NewRunner(logger *zap.Logger, client llm.Completer, prompts *dataset.Builder, maxRounds int) *Runner {
	if maxRounds <= 0 {
		maxRounds = 3
	}
	return &Runner{
		logger:    logger.Named("generator"),
		client:    client,
		prompts:   prompts,
		maxRounds: maxRounds,
	}
}

const retryPrompt = "Your previous reply did not contain a fenced code block. " +
	"Reply with only the complete test class in a ```java block."

// Execute runs the generation conversation until the model produces a
// fenced test class or the round budget is exhausted. Cancellation is
// cooperative: the loop returns ErrStopped at the next poll after a stop
// request, it never interrupts an in-flight model call.
func (r *Runner) Execute(ctx context.Context, s *session.Session) error {
	system, user, err := r.prompts.BuildPrompt(s.Data(), s.JUnitVersion())
	if err != nil {
		return err
	}

	msgs := []session.Message{
		{Role: cnst.RoleSystem, Content: system},
		{Role: cnst.RoleUser, Content: user},
	}

	for round := 1; round <= r.maxRounds; round++ {
		if s.ShouldStop() {
			r.logger.Info("stop requested, terminating work loop",
				zap.String("session_id", s.ID()),
				zap.Int("round", round))
			return ErrStopped
		}

		reply, err := r.client.ChatCompletion(ctx, toChat(msgs))
		if err != nil {
			return fmt.Errorf("model call (round %d): %w", round, err)
		}
		reply = RemoveThinking(reply)

		msgs = append(msgs, session.Message{Role: cnst.RoleAssistant, Content: reply})
		if err := s.UpdateMessages(msgs); err != nil {
			return err
		}

		if code := ExtractCode(reply); code != "" {
			code = StripLineNumbers(code)
			msgs = append(msgs, session.Message{Role: cnst.RoleAssistant, Content: code})
			r.logger.Info("generation finished",
				zap.String("session_id", s.ID()),
				zap.Int("rounds", round))
			return s.UpdateMessages(msgs)
		}

		msgs = append(msgs, session.Message{Role: cnst.RoleUser, Content: retryPrompt})
	}

	return fmt.Errorf("no code block in model reply after %d rounds", r.maxRounds)
}

func toChat(msgs []session.Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = llm.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
