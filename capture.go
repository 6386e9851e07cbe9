package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/hako/durafmt"
)

// Session capture and replay. Every feed message can be recorded verbatim
// into a pcap file with its arrival timestamp, then replayed later at the
// original cadence — the replay path drives the exact same message handler
// as a live connection, so a captured session reproduces a bug frame for
// frame without a server.

const captureSnapLen = 1 << 16

type feedRecorder struct {
	mu sync.Mutex
	f  *os.File
	w  *pcapgo.Writer
	n  int
}

func newFeedRecorder(path string) (*feedRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(captureSnapLen, layers.LinkTypeNull); err != nil {
		f.Close()
		return nil, err
	}
	return &feedRecorder{f: f, w: w}, nil
}

func (r *feedRecorder) record(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
	if err := r.w.WritePacket(ci, data); err != nil {
		logError("capture write: %v", err)
		return
	}
	r.n++
}

func (r *feedRecorder) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	logDebug("capture closed: %d messages", r.n)
	r.f.Close()
}

// replayCapture feeds a recorded session back through the message handler,
// sleeping out the original inter-message gaps scaled by speed (2.0 plays
// twice as fast).
func replayCapture(ctx context.Context, rc *renderContext, path string, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	rd, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("open capture %s: %w", path, err)
	}
	if speed <= 0 {
		speed = 1
	}

	sink := &feedClient{rc: rc}
	var prev time.Time
	var first time.Time
	count := 0
	for ctx.Err() == nil {
		data, ci, err := rd.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
		if first.IsZero() {
			first = ci.Timestamp
		}
		if !prev.IsZero() {
			gap := time.Duration(float64(ci.Timestamp.Sub(prev)) / speed)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(gap):
			}
		}
		prev = ci.Timestamp
		if err := sink.handleMessage(data); err != nil {
			logError("replay message: %v", err)
		}
		count++
		if count%1000 == 0 {
			elapsed := durafmt.Parse(ci.Timestamp.Sub(first).Round(time.Second)).LimitFirstN(2)
			addMessage(fmt.Sprintf("replay: %d messages, %s in", count, elapsed))
		}
	}
	addMessage(fmt.Sprintf("replay finished: %d messages over %s",
		count, durafmt.Parse(prev.Sub(first).Round(time.Second)).LimitFirstN(2)))
	return nil
}
