package chat

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestHistoryRoundTrip(t *testing.T) {
	h := NewHistory(time.Minute, 5)

	h.Record("conv-1", "자료구조 알려줘", "자료구조및실습 과목이 있어요.")

	got := h.Recent("conv-1")
	want := []Turn{
		{Role: RoleUser, Content: "자료구조 알려줘"},
		{Role: RoleAssistant, Content: "자료구조및실습 과목이 있어요."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recent() = %v, want %v", got, want)
	}
}

func TestHistoryIsolatesConversations(t *testing.T) {
	h := NewHistory(time.Minute, 5)

	h.Record("conv-1", "질문", "답변")
	if got := h.Recent("conv-2"); got != nil {
		t.Errorf("Recent(conv-2) = %v, want nil", got)
	}
}

func TestHistoryTurnLimit(t *testing.T) {
	h := NewHistory(time.Minute, 5)

	for i := 0; i < 8; i++ {
		h.Record("conv-1", fmt.Sprintf("질문 %d", i), fmt.Sprintf("답변 %d", i))
	}

	got := h.Recent("conv-1")
	if len(got) != 10 {
		t.Fatalf("Recent() returned %d turns, want 10", len(got))
	}
	// The oldest exchanges are evicted first.
	if got[0].Content != "질문 3" {
		t.Errorf("oldest retained turn = %q, want 질문 3", got[0].Content)
	}
	if got[9].Content != "답변 7" {
		t.Errorf("newest retained turn = %q, want 답변 7", got[9].Content)
	}
}

func TestHistoryExpires(t *testing.T) {
	h := NewHistory(10*time.Millisecond, 5)

	h.Record("conv-1", "질문", "답변")
	time.Sleep(30 * time.Millisecond)

	if got := h.Recent("conv-1"); got != nil {
		t.Errorf("Recent() = %v after TTL, want nil", got)
	}
}

func TestHistoryEmptyConversationID(t *testing.T) {
	h := NewHistory(time.Minute, 5)

	h.Record("", "질문", "답변")
	if got := h.Recent(""); got != nil {
		t.Errorf("Recent(\"\") = %v, want nil", got)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(time.Minute, 5)

	h.Record("conv-1", "질문", "답변")
	h.Clear("conv-1")
	if got := h.Recent("conv-1"); got != nil {
		t.Errorf("Recent() = %v after Clear, want nil", got)
	}
}

func TestHistoryRecentReturnsCopy(t *testing.T) {
	h := NewHistory(time.Minute, 5)

	h.Record("conv-1", "질문", "답변")
	turns := h.Recent("conv-1")
	turns[0].Content = "변조된 질문"

	if got := h.Recent("conv-1"); got[0].Content != "질문" {
		t.Errorf("stored history mutated through Recent() slice: %q", got[0].Content)
	}
}
