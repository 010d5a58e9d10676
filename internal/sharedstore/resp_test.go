package sharedstore

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"
)

// fakeRedisServer accepts one connection at a time and replies to each
// command with the canned reply handle returns, enough to exercise respAdapter's
// command-framing and reply-parsing without a real broker.
func fakeRedisServer(t *testing.T, handle func(cmd []string) string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				reader := bufio.NewReader(c)
				cmd, ok := readCommand(reader)
				if !ok {
					return
				}
				c.Write([]byte(handle(cmd)))
			}(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

// readCommand parses one RESP array-of-bulk-strings command, the inverse
// of sendCommand, for the fake server's use.
func readCommand(reader *bufio.Reader) ([]string, bool) {
	rep, err := readReply(reader)
	if err != nil {
		return nil, false
	}
	if rep.array == nil {
		return nil, false
	}
	out := make([]string, len(rep.array))
	for i, e := range rep.array {
		out[i] = e.bulk
	}
	return out, true
}

func TestRESPAddIfAbsentTrueOnNewMember(t *testing.T) {
	addr := fakeRedisServer(t, func(cmd []string) string {
		return ":1\r\n"
	})
	a := NewRESP(addr)
	ok, err := a.AddIfAbsent(context.Background(), "visited", "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected true for a fresh member (SADD reply 1)")
	}
}

func TestRESPAddIfAbsentFalseOnExistingMember(t *testing.T) {
	addr := fakeRedisServer(t, func(cmd []string) string {
		return ":0\r\n"
	})
	a := NewRESP(addr)
	ok, err := a.AddIfAbsent(context.Background(), "visited", "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false when SADD reply is 0 (already a member)")
	}
}

func TestRESPDequeueParsesArrayReply(t *testing.T) {
	addr := fakeRedisServer(t, func(cmd []string) string {
		return "*2\r\n$5\r\nqueue\r\n$5\r\nvalue\r\n"
	})
	a := NewRESP(addr)
	item, ok, err := a.Dequeue(context.Background(), "queue", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || string(item) != "value" {
		t.Errorf("got %q, ok=%v", item, ok)
	}
}

func TestRESPDequeueNilReplyMeansEmpty(t *testing.T) {
	addr := fakeRedisServer(t, func(cmd []string) string {
		return "*-1\r\n"
	})
	a := NewRESP(addr)
	_, ok, err := a.Dequeue(context.Background(), "queue", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false on nil array reply")
	}
}

func TestRESPMembersParsesArray(t *testing.T) {
	addr := fakeRedisServer(t, func(cmd []string) string {
		return "*2\r\n$1\r\na\r\n$1\r\nb\r\n"
	})
	a := NewRESP(addr)
	members, err := a.Members(context.Background(), "visited")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("got %d members, want 2", len(members))
	}
}

func TestRESPReadResultsParsesArray(t *testing.T) {
	addr := fakeRedisServer(t, func(cmd []string) string {
		return "*2\r\n$2\r\nr1\r\n$2\r\nr2\r\n"
	})
	a := NewRESP(addr)
	results, err := a.ReadResults(context.Background(), "results")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || string(results[0]) != "r1" || string(results[1]) != "r2" {
		t.Errorf("unexpected results: %v", results)
	}
}
