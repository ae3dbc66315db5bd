package frames

import (
	"fmt"
	"sync"
	"time"
)

type Kind string

const (
	KindText    Kind = "text"
	KindControl Kind = "control"
)

type ControlCode string

const (
	ControlCancel            ControlCode = "cancel"
	ControlFlush             ControlCode = "flush"
	ControlStartInterruption ControlCode = "start_interruption"
)

// Metadata keys.
const (
	MetaStreamID  = "stream_id"
	MetaSource    = "source"
	MetaReason    = "reason"
	MetaDecision  = "decision"
	MetaEpisodeID = "episode_id"
)

type Frame interface {
	Kind() Kind
	PTS() int64
	Meta() map[string]string
}

type TextFrame struct {
	pts  int64
	text string
	meta map[string]string
}

func NewTextFrame(streamID string, pts int64, text string, meta map[string]string) TextFrame {
	return TextFrame{
		pts:  pts,
		text: text,
		meta: mergeMeta(streamID, meta),
	}
}

func (t TextFrame) Kind() Kind              { return KindText }
func (t TextFrame) PTS() int64              { return t.pts }
func (t TextFrame) Meta() map[string]string { return cloneMeta(t.meta) }
func (t TextFrame) Text() string            { return t.text }

func (t TextFrame) String() string {
	return fmt.Sprintf("text(%s pts=%d %q)", t.meta[MetaStreamID], t.pts, t.text)
}

type ControlFrame struct {
	pts  int64
	code ControlCode
	meta map[string]string
}

func NewControlFrame(streamID string, pts int64, code ControlCode, meta map[string]string) ControlFrame {
	return ControlFrame{
		pts:  pts,
		code: code,
		meta: mergeMeta(streamID, meta),
	}
}

func (c ControlFrame) Kind() Kind              { return KindControl }
func (c ControlFrame) PTS() int64              { return c.pts }
func (c ControlFrame) Meta() map[string]string { return cloneMeta(c.meta) }
func (c ControlFrame) Code() ControlCode       { return c.code }

func (c ControlFrame) String() string {
	if reason := c.meta[MetaReason]; reason != "" {
		return fmt.Sprintf("control(%s pts=%d %s reason=%s)", c.meta[MetaStreamID], c.pts, c.code, reason)
	}
	return fmt.Sprintf("control(%s pts=%d %s)", c.meta[MetaStreamID], c.pts, c.code)
}

// PTSGen hands out strictly increasing presentation timestamps per stream.
type PTSGen struct {
	mu    sync.Mutex
	value map[string]int64
}

func NewPTSGen() *PTSGen {
	return &PTSGen{value: make(map[string]int64)}
}

func (g *PTSGen) Next(streamID string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.value[streamID] + time.Millisecond.Nanoseconds()
	g.value[streamID] = v
	return v
}

func mergeMeta(streamID string, meta map[string]string) map[string]string {
	out := make(map[string]string, 1+len(meta))
	if streamID != "" {
		out[MetaStreamID] = streamID
	}
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func cloneMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
