package chatbot

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vagbhata/internal/types"
)

// ThreadSeparator splits the owning identity from the unique suffix in a
// thread id, e.g. "alice|550e8400-...". Anonymous threads have no prefix.
const ThreadSeparator = "|"

// DefaultThreadNameLength is the display truncation length for thread names.
const DefaultThreadNameLength = 20

// NewThreadID derives a globally unique thread id, prefixed with the owning
// identity when one is present.
func NewThreadID(identity string) string {
	suffix := uuid.NewString()
	if identity == "" {
		return suffix
	}
	return identity + ThreadSeparator + suffix
}

// OwnerOf returns the identity prefix of a thread id, or "" for anonymous
// threads.
func OwnerOf(threadID string) string {
	if i := strings.Index(threadID, ThreadSeparator); i >= 0 {
		return threadID[:i]
	}
	return ""
}

// Session is the explicit per-client conversation context: the current
// identity, the active thread, and the threads visible to this session. Its
// lifecycle is scoped to one client connection; the store remains the source
// of truth and the thread list here is a reconcilable cache.
type Session struct {
	Identity string
	ThreadID string
	Threads  []string

	store Store
	log   *zap.Logger
}

// NewSession seeds a session from the store. A thread is visible iff its
// identity prefix equals the session identity; anonymous sessions see only
// the fresh thread created here. A store failure during listing degrades to
// an empty thread list with a logged warning so the surface can still render.
func NewSession(identity string, st Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		Identity: identity,
		store:    st,
		log:      logger.Named("session"),
	}

	if identity != "" {
		known, err := st.ListThreads()
		if err != nil {
			s.log.Warn("failed to list threads, starting with none", zap.Error(err))
		} else {
			for _, id := range known {
				if OwnerOf(id) == identity {
					s.Threads = append(s.Threads, id)
				}
			}
		}
	}

	s.StartThread()
	return s
}

// StartThread creates a fresh thread, makes it current, and registers it in
// the session's thread list.
func (s *Session) StartThread() string {
	s.ThreadID = NewThreadID(s.Identity)
	s.addThread(s.ThreadID)
	return s.ThreadID
}

// Switch makes an existing visible thread current. Unknown ids are refused.
func (s *Session) Switch(threadID string) bool {
	for _, id := range s.Threads {
		if id == threadID {
			s.ThreadID = threadID
			return true
		}
	}
	return false
}

func (s *Session) addThread(threadID string) {
	for _, id := range s.Threads {
		if id == threadID {
			return
		}
	}
	s.Threads = append(s.Threads, threadID)
}

// ThreadName derives a display name for a thread: the first user message,
// truncated with an ellipsis. Threads without user messages display as
// "New Thread".
func (s *Session) ThreadName(threadID string, maxLength int) string {
	msgs, err := s.store.GetThread(threadID)
	if err != nil {
		s.log.Warn("failed to load thread for naming", zap.String("thread_id", threadID), zap.Error(err))
		return "New Thread"
	}
	return ThreadTitle(msgs, maxLength)
}

// ThreadTitle derives a display name from a thread's messages: the first
// user message, truncated with an ellipsis. No user message means
// "New Thread".
func ThreadTitle(msgs []types.Message, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultThreadNameLength
	}
	for _, m := range msgs {
		if m.Role != types.RoleUser {
			continue
		}
		name := m.Content
		// Truncate on runes, not bytes: titles routinely carry multi-byte
		// transliteration marks.
		if runes := []rune(name); len(runes) > maxLength {
			return strings.TrimSpace(string(runes[:maxLength])) + "..."
		}
		return name
	}
	return "New Thread"
}
