// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"cogentcore.org/forcegraph/base/websocket"
	"cogentcore.org/forcegraph/config"
	"cogentcore.org/forcegraph/force"
	"github.com/spf13/cobra"
)

// TickFrame is the websocket message with the state of a simulation
// after a number of ticks.
type TickFrame struct {
	Tick      int     `json:"tick"`
	Alpha     float32 `json:"alpha"`
	Converged bool    `json:"converged"`

	// Positions are the node positions in node order,
	// with 2 or 3 coordinates.
	Positions [][]float32 `json:"positions"`
}

// Client commands, sent as text messages.
const (
	// CommandReheat restarts the cooling of the simulation.
	CommandReheat = "reheat"

	// CommandStop ends the stream after the next frame.
	CommandStop = "stop"
)

func newServeCommand(opts *options) *cobra.Command {
	sv := &server{}
	var addr string
	var fps float32

	cmd := &cobra.Command{
		Use:   "serve graph.json",
		Short: "Stream the layout of a graph over a websocket",
		Long: `Serves the graph data at /graph and, for each websocket connection to /ws,
runs a new simulation of the graph, sending the node positions as a JSON
frame after every tick until it converges. Clients can send "reheat" to
restart the cooling, and "stop" to end the stream.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			sv.config = cfg
			sv.file = args[0]
			if fps > 0 {
				sv.interval = time.Duration(float32(time.Second) / fps)
			}
			// check the graph before listening
			if _, _, err := openGraph(cfg, sv.file); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
			defer stop()
			return sv.listen(ctx, addr)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	fs.Float32Var(&fps, "fps", 60, "maximum frames per second; 0 for no limit")
	fs.IntVar(&sv.ticksPerFrame, "ticks-per-frame", 1, "ticks of the simulation between frames")
	return cmd
}

// server streams simulations of a graph file.
type server struct {
	config *config.Config
	file   string

	// interval is the minimum time between frames.
	interval time.Duration

	ticksPerFrame int
}

func (sv *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /graph", sv.serveGraph)
	mux.HandleFunc("GET /ws", sv.stream)
	return mux
}

func (sv *server) listen(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: sv.handler()}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hs.Shutdown(sctx)
	}()
	slog.Info("serving", "addr", addr, "graph", sv.file, "engine", sv.config.Engine)
	err := hs.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// serveGraph writes the current graph data, with its initial positions.
func (sv *server) serveGraph(w http.ResponseWriter, r *http.Request) {
	dt, gr, err := openGraph(sv.config, sv.file)
	if err != nil {
		slog.Error("serve graph", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dt.SetPositions(gr.Nodes, sv.config.Simulation.Dims)
	w.Header().Set("Content-Type", "application/json")
	dt.Write(w)
}

// stream runs a new simulation for the connection, sending a frame
// after every ticksPerFrame ticks, until it converges, the client
// stops it, or the connection closes.
func (sv *server) stream(w http.ResponseWriter, r *http.Request) {
	cfg := sv.config
	_, gr, err := openGraph(cfg, sv.file)
	if err != nil {
		slog.Error("serve stream", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	en, err := cfg.NewEngine(gr.Nodes, gr.Edges)
	if err != nil {
		slog.Error("serve stream", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer config.Release(en)
	c, err := websocket.Accept(w, r)
	if err != nil {
		slog.Error("serve stream: upgrade", "err", err)
		return
	}
	slog.Info("stream started", "remote", r.RemoteAddr, "nodes", en.NodeCount())

	commands := make(chan string, 8)
	c.OnMessage(func(typ websocket.MessageTypes, msg []byte) {
		if typ != websocket.TextMessage {
			return
		}
		select {
		case commands <- strings.TrimSpace(string(msg)):
		default:
		}
	})

	ticks := 0
	var pace <-chan time.Time
	if sv.interval > 0 {
		tk := time.NewTicker(sv.interval)
		defer tk.Stop()
		pace = tk.C
	}
	stop := false
	for !stop {
		select {
		case <-c.Done():
			slog.Info("stream closed by client", "remote", r.RemoteAddr, "tick", ticks)
			return
		case cmd := <-commands:
			switch cmd {
			case CommandReheat:
				en.Reheat()
			case CommandStop:
				stop = true
			default:
				slog.Warn("serve stream: unknown command", "command", cmd)
			}
		default:
		}
		ticks += en.TickN(max(sv.ticksPerFrame, 1))
		fr, err := newTickFrame(en, ticks, cfg.Simulation.Dims)
		if err != nil {
			slog.Error("serve stream", "err", err)
			break
		}
		if err := c.SendJSON(fr); err != nil {
			slog.Error("serve stream: send", "err", err)
			return
		}
		if fr.Converged {
			break
		}
		if pace != nil {
			select {
			case <-pace:
			case <-c.Done():
			}
		}
	}
	slog.Info("stream finished", "remote", r.RemoteAddr, "tick", ticks, "alpha", en.Alpha())
	c.Close()
	select {
	case <-c.Done():
	case <-time.After(time.Second):
	}
}

func newTickFrame(en force.Engine, tick, dims int) (*TickFrame, error) {
	nodes, err := en.ReadNodes()
	if err != nil {
		return nil, err
	}
	fr := &TickFrame{Tick: tick, Alpha: en.Alpha(), Converged: en.IsConverged()}
	fr.Positions = make([][]float32, len(nodes))
	for i := range nodes {
		p := nodes[i].Pos
		if dims == 3 {
			fr.Positions[i] = []float32{p.X, p.Y, p.Z}
		} else {
			fr.Positions[i] = []float32{p.X, p.Y}
		}
	}
	return fr, nil
}
