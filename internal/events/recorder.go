package events

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Recorder appends every event it receives to a JSON-lines file.
type Recorder struct {
	hub  *Hub
	ch   chan Event
	done chan error
}

func StartRecorder(hub *Hub, path string) (*Recorder, error) {
	if hub == nil {
		return nil, errors.New("events: hub is nil")
	}
	if path == "" {
		return nil, errors.New("events: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	r := &Recorder{hub: hub, ch: hub.Subscribe(1024), done: make(chan error, 1)}
	go func() {
		w := bufio.NewWriter(f)
		enc := json.NewEncoder(w)
		var werr error
		for evt := range r.ch {
			if werr == nil {
				werr = enc.Encode(evt)
			}
		}
		if err := w.Flush(); werr == nil {
			werr = err
		}
		if err := f.Close(); werr == nil {
			werr = err
		}
		r.done <- werr
	}()
	return r, nil
}

// Close stops recording and flushes what was received.
func (r *Recorder) Close() error {
	r.hub.Unsubscribe(r.ch)
	return <-r.done
}
