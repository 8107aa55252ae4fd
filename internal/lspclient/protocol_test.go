package lspclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingReader is a reader that blocks forever on Read.
type blockingReader struct{}

func (b *blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestProtocol_WriteMessage(t *testing.T) {
	t.Run("writes Content-Length header", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProtocol(nil, &buf)

		req := Request{JSONRPC: "2.0", ID: 1, Method: "test"}

		require.NoError(t, p.writeMessage(req))

		output := buf.String()
		assert.Contains(t, output, "Content-Length:")
	})

	t.Run("writes params when provided", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProtocol(nil, &buf)

		req := Request{
			JSONRPC: "2.0",
			ID:      1,
			Method:  "test",
			Params:  map[string]string{"key": "value"},
		}

		require.NoError(t, p.writeMessage(req))
		assert.Contains(t, buf.String(), `"key":"value"`)
	})
}

func TestProtocol_ReadMessage(t *testing.T) {
	t.Run("reads valid message", func(t *testing.T) {
		msg := `{"jsonrpc":"2.0","id":1,"result":null}`
		input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(msg), msg)

		p := NewProtocol(strings.NewReader(input), nil)

		body, err := p.readMessage()
		require.NoError(t, err)
		assert.Equal(t, msg, string(body))
	})

	t.Run("returns error for missing Content-Length", func(t *testing.T) {
		input := "\r\n{\"test\":true}"
		p := NewProtocol(strings.NewReader(input), nil)

		_, err := p.readMessage()
		assert.Error(t, err)
	})

	t.Run("returns EOF for empty input", func(t *testing.T) {
		p := NewProtocol(strings.NewReader(""), nil)

		_, err := p.readMessage()
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestProtocol_HandleMessage(t *testing.T) {
	t.Run("dispatches response to pending request", func(t *testing.T) {
		p := NewProtocol(nil, nil)

		respCh := make(chan Response, 1)
		p.pendingMu.Lock()
		p.pending[42] = respCh
		p.pendingMu.Unlock()

		p.handleMessage([]byte(`{"jsonrpc":"2.0","id":42,"result":"test"}`))

		select {
		case resp := <-respCh:
			assert.Equal(t, int64(42), resp.ID)
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout waiting for response")
		}
	})

	t.Run("ignores unknown request ID", func(t *testing.T) {
		p := NewProtocol(nil, nil)
		p.handleMessage([]byte(`{"jsonrpc":"2.0","id":999,"result":"test"}`))
	})

	t.Run("dispatches notifications to the registered callback", func(t *testing.T) {
		p := NewProtocol(nil, nil)

		var gotMethod string
		var gotParams string
		var wg sync.WaitGroup
		wg.Add(1)
		p.OnNotification(func(method string, params json.RawMessage) {
			gotMethod = method
			gotParams = string(params)
			wg.Done()
		})

		p.handleMessage([]byte(`{"jsonrpc":"2.0","method":"window/logMessage","params":{"type":3,"message":"hi"}}`))
		wg.Wait()

		assert.Equal(t, "window/logMessage", gotMethod)
		assert.Contains(t, gotParams, "hi")
	})

	t.Run("does not panic with no callback registered", func(t *testing.T) {
		p := NewProtocol(nil, nil)
		p.handleMessage([]byte(`{"jsonrpc":"2.0","method":"window/logMessage","params":{}}`))
	})
}

func TestProtocol_SendRequest(t *testing.T) {
	t.Run("returns error for nil context", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProtocol(nil, &buf)

		_, err := p.SendRequest(nil, "test", nil) //nolint:staticcheck
		assert.Error(t, err)
	})

	t.Run("returns error when closed", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProtocol(nil, &buf)
		p.Close()

		_, err := p.SendRequest(context.Background(), "test", nil)
		assert.ErrorIs(t, err, ErrServerNotRunning)
	})

	t.Run("returns error on timeout", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProtocol(&blockingReader{}, &buf)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := p.SendRequest(ctx, "test", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func TestProtocol_SendNotification(t *testing.T) {
	t.Run("sends notification without an ID", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProtocol(nil, &buf)

		require.NoError(t, p.SendNotification("initialized", struct{}{}))

		output := buf.String()
		assert.Contains(t, output, `"method":"initialized"`)
		assert.NotContains(t, output, `"id":`)
	})

	t.Run("returns error when closed", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewProtocol(nil, &buf)
		p.Close()

		err := p.SendNotification("test", nil)
		assert.ErrorIs(t, err, ErrServerNotRunning)
	})
}

func TestProtocol_Close(t *testing.T) {
	t.Run("cancels pending requests with error response", func(t *testing.T) {
		p := NewProtocol(nil, nil)

		respCh := make(chan Response, 1)
		p.pendingMu.Lock()
		p.pending[1] = respCh
		p.pendingMu.Unlock()

		p.Close()

		select {
		case resp, ok := <-respCh:
			if ok && resp.Error != nil {
				assert.Equal(t, -32099, resp.Error.Code)
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout waiting for response or channel close")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		p := NewProtocol(nil, nil)
		p.Close()
		p.Close()
	})
}

func TestProtocol_Concurrent(t *testing.T) {
	t.Run("handles concurrent writes without interleaving", func(t *testing.T) {
		var buf bytes.Buffer
		var mu sync.Mutex
		p := NewProtocol(nil, &syncWriter{w: &buf, mu: &mu})

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				assert.NoError(t, p.SendNotification("test", map[string]int{"n": n}))
			}(i)
		}
		wg.Wait()

		count := strings.Count(buf.String(), `"method":"test"`)
		assert.Equal(t, 10, count)
	})
}

// syncWriter guards buf with an external mutex so the test's own reads of
// buf.String() never race with the protocol's writes.
type syncWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func TestRequest_MarshalJSON(t *testing.T) {
	req := Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "textDocument/definition",
		Params: TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: "file:///test.go"},
			Position:     Position{Line: 10, Character: 5},
		},
	}

	var buf bytes.Buffer
	p := NewProtocol(nil, &buf)
	require.NoError(t, p.writeMessage(req))

	output := buf.String()
	expected := []string{
		`"jsonrpc":"2.0"`,
		`"id":1`,
		`"method":"textDocument/definition"`,
		`"textDocument":{"uri":"file:///test.go"}`,
		`"position":{"line":10,"character":5}`,
	}
	for _, s := range expected {
		assert.Contains(t, output, s)
	}
}

func TestNotification_MarshalJSON(t *testing.T) {
	notif := Notification{
		JSONRPC: "2.0",
		Method:  "textDocument/didOpen",
		Params: DidOpenTextDocumentParams{
			TextDocument: TextDocumentItem{
				URI:        "file:///test.go",
				LanguageID: "go",
				Version:    1,
				Text:       "package main",
			},
		},
	}

	var buf bytes.Buffer
	p := NewProtocol(nil, &buf)
	require.NoError(t, p.writeMessage(notif))

	output := buf.String()
	assert.NotContains(t, output, `"id":`)
	assert.Contains(t, output, `"languageId":"go"`)
}
