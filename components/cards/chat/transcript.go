package chat

import "sync"

// Transcript size limits.
const (
	DefaultMaxMessages   = 100
	DefaultMaxCharacters = 100000
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`
	Pending bool     `json:"pending,omitempty"`
}

// TranscriptConfig bounds a transcript. Zero values take the defaults;
// negative values disable that limit.
type TranscriptConfig struct {
	MaxMessages   int
	MaxCharacters int
}

// Transcript holds the chat history for one dashboard session. It is safe for
// concurrent use; streamed tokens append to the trailing assistant message.
type Transcript struct {
	mu            sync.RWMutex
	messages      []Message
	totalChars    int
	maxMessages   int
	maxCharacters int
}

// NewTranscript creates a transcript with default limits.
func NewTranscript() *Transcript {
	return NewTranscriptWithConfig(TranscriptConfig{})
}

// NewTranscriptWithConfig creates a transcript with custom limits.
func NewTranscriptWithConfig(config TranscriptConfig) *Transcript {
	if config.MaxMessages == 0 {
		config.MaxMessages = DefaultMaxMessages
	}
	if config.MaxCharacters == 0 {
		config.MaxCharacters = DefaultMaxCharacters
	}
	return &Transcript{
		maxMessages:   config.MaxMessages,
		maxCharacters: config.MaxCharacters,
	}
}

// AddUserMessage appends the user's question and opens a pending assistant
// message for the streamed answer.
func (t *Transcript) AddUserMessage(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.append(Message{Role: RoleUser, Content: content})
	t.append(Message{Role: RoleAssistant, Pending: true})
}

// AppendToken adds a streamed token to the trailing assistant message.
// Tokens arriving with no pending assistant message are dropped.
func (t *Transcript) AppendToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	last := t.pendingAssistant()
	if last == nil {
		return
	}
	last.Content += token
	t.totalChars += len(token)
	t.trimToCharacterLimit()
}

// Complete marks the trailing assistant message finished and attaches its
// sources.
func (t *Transcript) Complete(sources []Source) {
	t.mu.Lock()
	defer t.mu.Unlock()
	last := t.pendingAssistant()
	if last == nil {
		return
	}
	last.Pending = false
	if len(sources) > 0 {
		last.Sources = append([]Source(nil), sources...)
	}
}

// Fail replaces the trailing assistant message with the error text.
func (t *Transcript) Fail(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	last := t.pendingAssistant()
	if last == nil {
		return
	}
	t.totalChars += len(message) - len(last.Content)
	last.Content = message
	last.Pending = false
}

// Handlers returns stream handlers wired into this transcript.
func (t *Transcript) Handlers() Handlers {
	return Handlers{
		OnToken: t.AppendToken,
		OnDone:  t.Complete,
		OnError: t.Fail,
	}
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len reports the number of transcript entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Reset clears the transcript.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
	t.totalChars = 0
}

func (t *Transcript) pendingAssistant() *Message {
	if len(t.messages) == 0 {
		return nil
	}
	last := &t.messages[len(t.messages)-1]
	if last.Role != RoleAssistant || !last.Pending {
		return nil
	}
	return last
}

func (t *Transcript) append(msg Message) {
	t.messages = append(t.messages, msg)
	t.totalChars += len(msg.Content)
	t.trimToMessageLimit()
	t.trimToCharacterLimit()
}

func (t *Transcript) trimToMessageLimit() {
	if t.maxMessages <= 0 {
		return
	}
	for len(t.messages) > t.maxMessages {
		removed := t.messages[0]
		t.messages = t.messages[1:]
		t.totalChars -= len(removed.Content)
	}
}

func (t *Transcript) trimToCharacterLimit() {
	if t.maxCharacters <= 0 {
		return
	}
	// Keep at least one message even when it alone exceeds the limit.
	for t.totalChars > t.maxCharacters && len(t.messages) > 1 {
		removed := t.messages[0]
		t.messages = t.messages[1:]
		t.totalChars -= len(removed.Content)
	}
}
