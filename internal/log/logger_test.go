package log

import (
	"bytes"
	"testing"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	if l.LastEvent().Seq != 0 {
		t.Fatal("empty logger has no last event")
	}
	l.Log(NewJoinEvent(0, "alice", 1))
	l.Log(NewServeEvent(0, "alice", "[3s]"))
	l.Log(NewPassEvent(0, "bob"))

	if got := l.LastEvent(); got.Seq != 3 || got.Type != EventPass {
		t.Errorf("last event = %+v", got)
	}
	since := l.Since(1)
	if len(since) != 2 || since[0].Type != EventServe {
		t.Errorf("Since(1) = %+v", since)
	}
	if serves := l.EventsOfType(EventServe); len(serves) != 1 || serves[0].Cards != "[3s]" {
		t.Errorf("serves = %+v", serves)
	}

	events := l.Events()
	events[0].Details = "changed"
	if l.Events()[0].Details == "changed" {
		t.Error("Events must return a copy")
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewFlushEvent(2, "discard", "[5c]", "carol"))
	l.Log(NewDealEvent([]string{"a", "b"}, 54))

	want := "E2  carol       | Play stack flushed to discard, carol leads\n" +
		"E0  -           | Dealt 54 cards to a, b\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
	if len(l.Events()) != 2 {
		t.Errorf("text logger keeps events too")
	}
}

func TestBoundedMemoryLogger(t *testing.T) {
	l := NewBoundedMemoryLogger(2)
	for i := 0; i < 5; i++ {
		l.Log(NewPassEvent(0, "alice"))
	}
	events := l.Events()
	if len(events) != 2 || events[0].Seq != 4 || l.LastEvent().Seq != 5 {
		t.Fatalf("kept %+v", events)
	}
	l.Log(NewPassEvent(0, "bob"))
	if since := l.Since(4); len(since) != 2 || since[1].Seq != 6 || since[1].Player != "bob" {
		t.Errorf("Since(4) = %+v", since)
	}
}
