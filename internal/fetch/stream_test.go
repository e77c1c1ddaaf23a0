package fetch_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"steeple/internal/fetch"
)

func TestChunksYieldsAllBytes(t *testing.T) {
	payload := strings.Repeat("abc", 1000)
	var rebuilt bytes.Buffer
	for chunk, err := range fetch.Chunks(strings.NewReader(payload), 256) {
		if err != nil {
			t.Fatalf("unexpected chunk error: %v", err)
		}
		rebuilt.Write(chunk)
	}
	if rebuilt.String() != payload {
		t.Fatalf("expected %d bytes, got %d", len(payload), rebuilt.Len())
	}
}

func TestChunksPropagatesReadError(t *testing.T) {
	wantErr := errors.New("connection reset")
	reader := io.MultiReader(strings.NewReader("partial"), errReader{err: wantErr})

	var seen error
	var got bytes.Buffer
	for chunk, err := range fetch.Chunks(reader, 4) {
		if err != nil {
			seen = err
			break
		}
		got.Write(chunk)
	}
	if !errors.Is(seen, wantErr) {
		t.Fatalf("expected read error, got %v", seen)
	}
	if got.String() != "partial" {
		t.Fatalf("expected partial bytes before error, got %q", got.String())
	}
}

func TestChunksEmptyReader(t *testing.T) {
	count := 0
	for range fetch.Chunks(strings.NewReader(""), 16) {
		count++
	}
	if count != 0 {
		t.Fatalf("expected no chunks, got %d", count)
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
