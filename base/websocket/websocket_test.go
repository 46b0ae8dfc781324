// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer echoes every message back, upper cased.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := Accept(w, r)
		if err != nil {
			return
		}
		c.OnMessage(func(typ MessageTypes, msg []byte) {
			c.Send(typ, []byte(strings.ToUpper(string(msg))))
		})
		<-c.Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestEcho(t *testing.T) {
	srv := echoServer(t)
	c, err := Connect(wsURL(srv))
	require.NoError(t, err)

	got := make(chan string, 2)
	c.OnMessage(func(typ MessageTypes, msg []byte) {
		assert.Equal(t, TextMessage, typ)
		got <- string(msg)
	})
	closed := make(chan struct{})
	c.OnClose(func() { close(closed) })

	require.NoError(t, c.Send(TextMessage, []byte("hello")))
	require.NoError(t, c.SendJSON(map[string]int{"tick": 1}))
	for _, want := range []string{"HELLO", `{"TICK":1}`} {
		select {
		case msg := <-got:
			assert.Equal(t, want, strings.TrimSpace(msg))
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for echo")
		}
	}

	require.NoError(t, c.Close())
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for close")
	}
}

func TestAcceptPlainHTTP(t *testing.T) {
	srv := echoServer(t)
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConnectError(t *testing.T) {
	_, err := Connect("ws://127.0.0.1:1/none")
	assert.Error(t, err)
}
