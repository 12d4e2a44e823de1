package chat

import (
	"context"
	"strings"
	"testing"
)

func TestTranscriptStreamingLifecycle(t *testing.T) {
	transcript := NewTranscript()
	transcript.AddUserMessage("What were Q3 sales?")

	messages := transcript.Messages()
	if len(messages) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(messages))
	}
	if messages[0].Role != RoleUser || messages[0].Content != "What were Q3 sales?" {
		t.Fatalf("user message = %+v", messages[0])
	}
	if messages[1].Role != RoleAssistant || !messages[1].Pending {
		t.Fatalf("assistant placeholder = %+v", messages[1])
	}

	transcript.AppendToken("Sales were ")
	transcript.AppendToken("$1.2M.")
	transcript.Complete([]Source{{Title: "Q3 Report"}})

	messages = transcript.Messages()
	answer := messages[1]
	if answer.Content != "Sales were $1.2M." {
		t.Fatalf("answer content = %q", answer.Content)
	}
	if answer.Pending {
		t.Fatal("answer still pending after Complete")
	}
	if len(answer.Sources) != 1 || answer.Sources[0].Title != "Q3 Report" {
		t.Fatalf("answer sources = %+v", answer.Sources)
	}
}

func TestTranscriptFailReplacesPendingAnswer(t *testing.T) {
	transcript := NewTranscript()
	transcript.AddUserMessage("question")
	transcript.AppendToken("partial answ")
	transcript.Fail("query timed out")

	messages := transcript.Messages()
	answer := messages[1]
	if answer.Content != "query timed out" {
		t.Fatalf("answer content = %q", answer.Content)
	}
	if answer.Pending {
		t.Fatal("answer still pending after Fail")
	}
}

func TestTranscriptTokensWithoutPendingAnswerAreDropped(t *testing.T) {
	transcript := NewTranscript()
	transcript.AppendToken("stray")
	transcript.Complete(nil)
	transcript.Fail("stray error")
	if transcript.Len() != 0 {
		t.Fatalf("transcript has %d messages, want 0", transcript.Len())
	}

	transcript.AddUserMessage("q")
	transcript.Complete(nil)
	// The answer is closed; late tokens must be ignored.
	transcript.AppendToken("late")
	if got := transcript.Messages()[1].Content; got != "" {
		t.Fatalf("closed answer mutated: %q", got)
	}
}

func TestTranscriptHandlersDriveStream(t *testing.T) {
	transcript := NewTranscript()
	transcript.AddUserMessage("Hi there")

	body := "data: {\"type\":\"token\",\"data\":\"Hello\"}\n\n" +
		"data: {\"type\":\"token\",\"data\":\" back\"}\n\n" +
		"data: {\"type\":\"done\",\"sources\":[{\"title\":\"Docs\"}]}\n\n"
	if err := ReadStream(context.Background(), strings.NewReader(body), transcript.Handlers()); err != nil {
		t.Fatalf("ReadStream: %v", err)
	}

	answer := transcript.Messages()[1]
	if answer.Content != "Hello back" {
		t.Fatalf("answer = %q", answer.Content)
	}
	if answer.Pending {
		t.Fatal("answer still pending")
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("sources = %+v", answer.Sources)
	}
}

func TestTranscriptMessageLimit(t *testing.T) {
	transcript := NewTranscriptWithConfig(TranscriptConfig{MaxMessages: 4})
	for i := 0; i < 4; i++ {
		transcript.AddUserMessage("question")
		transcript.Complete(nil)
	}
	if transcript.Len() != 4 {
		t.Fatalf("transcript has %d messages, want 4", transcript.Len())
	}
}

func TestTranscriptCharacterLimit(t *testing.T) {
	transcript := NewTranscriptWithConfig(TranscriptConfig{MaxCharacters: 20})
	transcript.AddUserMessage(strings.Repeat("a", 15))
	transcript.Complete(nil)
	transcript.AddUserMessage(strings.Repeat("b", 15))

	messages := transcript.Messages()
	for _, msg := range messages {
		if strings.HasPrefix(msg.Content, "a") {
			t.Fatalf("oldest message not trimmed: %v", messages)
		}
	}
}

func TestTranscriptReset(t *testing.T) {
	transcript := NewTranscript()
	transcript.AddUserMessage("q")
	transcript.Reset()
	if transcript.Len() != 0 {
		t.Fatalf("transcript has %d messages after reset", transcript.Len())
	}
}
