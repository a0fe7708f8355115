// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/Thermoquad/crcengine/internal/log"
	tea "github.com/charmbracelet/bubbletea"
)

// Connection events sent to the monitor TUI
type connLostMsg struct{}
type reconnectedMsg struct {
	connInfo string
}

// openFunc opens a new connection
type openFunc func(ctx context.Context) (Connection, string, error)

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	open       openFunc
	conn       Connection
	connInfo   string
	mu         sync.RWMutex
	minBackoff time.Duration
	maxBackoff time.Duration
}

func newConnectionManager(open openFunc, conn Connection, connInfo string) *connectionManager {
	return &connectionManager{
		open:       open,
		conn:       conn,
		connInfo:   connInfo,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

func (cm *connectionManager) getConn() (Connection, string) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn, cm.connInfo
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

// close closes the current connection
func (cm *connectionManager) close() {
	if conn, _ := cm.getConn(); conn != nil {
		conn.Close()
	}
}

// run calls stream for the current connection and every reconnection until
// ctx is done. stream must return once its connection fails.
func (cm *connectionManager) run(ctx context.Context, stream func(Connection), notify func(tea.Msg)) {
	for {
		conn, _ := cm.getConn()
		stream(conn)

		if ctx.Err() != nil {
			return
		}
		notify(connLostMsg{})

		if !cm.reconnect(ctx) {
			return // Shutdown requested during reconnect
		}
		_, connInfo := cm.getConn()
		notify(reconnectedMsg{connInfo: connInfo})
	}
}

// reconnect retries with exponential backoff.
// Returns false if ctx was cancelled first.
func (cm *connectionManager) reconnect(ctx context.Context) bool {
	cm.close()

	backoff := cm.minBackoff
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := cm.open(ctx)
		if err == nil {
			cm.setConn(conn, connInfo)
			log.Infow("reconnected", "connection", connInfo)
			return true
		}
		log.Debugw("reconnect failed", "error", err, "backoff", backoff.String())

		backoff *= 2
		if backoff > cm.maxBackoff {
			backoff = cm.maxBackoff
		}
	}
}
