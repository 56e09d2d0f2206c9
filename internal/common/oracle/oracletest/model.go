// Package oracletest provides a scripted oracle.Model for tests.
package oracletest

import (
	"context"
	"errors"
	"sync"

	"lex-build-workers/internal/common/oracle"
)

var _ oracle.Model = (*Model)(nil)

// ErrScriptExhausted is returned once every scripted reply has been used and
// no fallback is set.
var ErrScriptExhausted = errors.New("oracletest: no scripted reply left")

// Call records one Converse invocation.
type Call struct {
	System   string
	Messages []oracle.Message
}

// Model replays scripted replies in order.
type Model struct {
	mu       sync.Mutex
	replies  []reply
	fallback func(system string, messages []oracle.Message) (string, error)
	calls    []Call
}

type reply struct {
	text string
	err  error
}

func New(replies ...string) *Model {
	m := &Model{}
	m.Reply(replies...)
	return m
}

// Reply queues successful replies.
func (m *Model) Reply(texts ...string) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range texts {
		m.replies = append(m.replies, reply{text: t})
	}
	return m
}

// Fail queues an error reply.
func (m *Model) Fail(err error) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply{err: err})
	return m
}

// Otherwise answers every call after the script runs out.
func (m *Model) Otherwise(fn func(system string, messages []oracle.Message) (string, error)) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
	return m
}

func (m *Model) Converse(_ context.Context, system string, messages []oracle.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{System: system, Messages: append([]oracle.Message(nil), messages...)})
	if len(m.replies) > 0 {
		r := m.replies[0]
		m.replies = m.replies[1:]
		return r.text, r.err
	}
	if m.fallback != nil {
		return m.fallback(system, messages)
	}
	return "", ErrScriptExhausted
}

// Calls returns a copy of every recorded call.
func (m *Model) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Model) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
