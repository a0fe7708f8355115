// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/crcengine/internal/log"
	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/Thermoquad/crcengine/pkg/frame"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	monitorAlgorithm string
	showAll          bool
	statsInterval    int
	useTUI           bool
	waitForFrame     bool
	monitorReconnect bool
	waitTimeout      int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode frames from a connection and track CRC errors",
	Long: `Continuously decode frames arriving on a serial port (--port) or WebSocket
(--url), check each frame's CRC with --algorithm and keep statistics.

Decode errors before the first valid frame are counted as skipped bytes while
the decoder synchronizes to the stream. After that, every CRC mismatch and
framing error is reported. Use --show-all to print valid frames too.

With --wait the command exits after the first valid frame instead:
  0 - Frame received before --timeout
  1 - Timeout or connection error`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVarP(&monitorAlgorithm, "algorithm", "a", "CRC-16/CCITT-FALSE", "Catalog algorithm protecting each frame")
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", false, "Use terminal UI")
	monitorCmd.Flags().BoolVar(&monitorReconnect, "reconnect", true, "Reconnect with backoff when the connection drops (TUI only)")
	monitorCmd.Flags().BoolVar(&waitForFrame, "wait", false, "Exit after the first valid frame")
	monitorCmd.Flags().IntVar(&waitTimeout, "timeout", 10, "Seconds to wait for a frame with --wait")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if statsInterval <= 0 {
		return fmt.Errorf("--stats-interval must be positive, got %d", statsInterval)
	}
	if waitTimeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %d", waitTimeout)
	}

	model, err := crc.Lookup(monitorAlgorithm)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	conn, connInfo, err := OpenConnection(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	switch {
	case waitForFrame:
		return runWaitMode(ctx, conn, connInfo, model)
	case useTUI:
		return runTUIMode(ctx, conn, connInfo, model)
	default:
		return runTextMode(ctx, conn, connInfo, model)
	}
}

// syncDecoder wraps a frame decoder and suppresses decode errors until the
// first valid frame has been seen
type syncDecoder struct {
	decoder      *frame.Decoder
	synchronized bool
	skipped      int
}

func newSyncDecoder(model *crc.Model) *syncDecoder {
	return &syncDecoder{decoder: frame.NewDecoder(model)}
}

// feed decodes one byte. synced is true for the frame that ended the
// synchronization phase; err is only returned once synchronized.
func (s *syncDecoder) feed(b byte) (f *frame.Frame, synced bool, err error) {
	f, err = s.decoder.DecodeByte(b)
	if err != nil {
		if !s.synchronized {
			s.skipped++
			return nil, false, nil
		}
		return nil, false, err
	}
	if f != nil && !s.synchronized {
		s.synchronized = true
		return f, true, nil
	}
	return f, false, nil
}

// readChunks copies reads from r into a channel, closing it on the first error
func readChunks(r io.Reader) <-chan []byte {
	ch := make(chan []byte, 10)
	go func() {
		defer close(ch)
		buf := make([]byte, 128)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				ch <- data
			}
			if err != nil {
				if errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF) {
					log.Infof("Connection closed")
				} else {
					log.Errorw(err, "read failed")
				}
				return
			}
		}
	}()
	return ch
}

// printDecodeError prints a decode error in highlighted format, followed by
// the wire bytes of the failed frame when the decoder kept any
func printDecodeError(w io.Writer, err error, raw []byte) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(w, "[%s] %s %v\n", timestamp, errorStyle.Render("DECODE ERROR:"), err)
	if len(raw) > 0 {
		fmt.Fprintf(w, "  Raw:       % X\n", raw)
		if body, ok := unstuffFrame(raw); ok {
			fmt.Fprintf(w, "  Unstuffed: % X\n", body)
		}
	}

	var crcErr *frame.CRCError
	if errors.As(err, &crcErr) {
		fmt.Fprintf(w, "  >>> CRC MISMATCH <<<\n\n")
		return
	}
	fmt.Fprintf(w, "  >>> DECODE FAILED <<<\n\n")
}

// unstuffFrame strips the framing bytes from raw and removes byte stuffing
func unstuffFrame(raw []byte) ([]byte, bool) {
	if len(raw) < 2 || raw[0] != frame.StartByte {
		return nil, false
	}
	body := raw[1:]
	if body[len(body)-1] == frame.EndByte {
		body = body[:len(body)-1]
	}
	unstuffed, err := frame.UnstuffBytes(body)
	if err != nil || len(unstuffed) == 0 {
		return nil, false
	}
	return unstuffed, true
}

// printSync announces that the decoder found the first valid frame
func printSync(w io.Writer, skipped int) {
	if skipped > 0 {
		fmt.Fprintf(w, "[SYNC] Synchronized after skipping %d invalid bytes\n\n", skipped)
	} else {
		fmt.Fprintf(w, "[SYNC] Synchronized\n\n")
	}
}

// runTextMode prints errors as they occur and statistics periodically
func runTextMode(ctx context.Context, conn Connection, connInfo string, model *crc.Model) error {
	out := rootCmd.OutOrStdout()

	fmt.Fprintf(out, "crcengine - Frame Monitor\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Algorithm: %s\n", model.Name())
	fmt.Fprintf(out, "Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Fprintf(out, "Mode: All frames\n")
	} else {
		fmt.Fprintf(out, "Mode: Errors only\n")
	}
	fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")

	sd := newSyncDecoder(model)
	stats := frame.NewStatistics()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	chunks := readChunks(conn)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(out, stats.String())
			return nil

		case data, ok := <-chunks:
			if !ok {
				fmt.Fprintln(out)
				fmt.Fprint(out, stats.String())
				return nil
			}
			for _, b := range data {
				f, synced, err := sd.feed(b)
				if synced {
					printSync(out, sd.skipped)
				}
				if err != nil {
					stats.Update(nil, err)
					printDecodeError(out, err, sd.decoder.GetRawBytes())
					continue
				}
				if f != nil {
					stats.Update(f, nil)
					if showAll {
						fmt.Fprint(out, frame.FormatFrame(f, model))
					}
				}
			}

		case <-statsTicker.C:
			fmt.Fprintln(out)
			fmt.Fprint(out, stats.String())
			fmt.Fprintln(out)
		}
	}
}

// runWaitMode waits for one valid frame or the timeout
func runWaitMode(ctx context.Context, conn Connection, connInfo string, model *crc.Model) error {
	out := rootCmd.OutOrStdout()

	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Waiting up to %d seconds for a valid %s frame...\n\n", waitTimeout, model.Name())

	ctx, cancel := context.WithTimeout(ctx, time.Duration(waitTimeout)*time.Second)
	defer cancel()

	sd := newSyncDecoder(model)
	chunks := readChunks(conn)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("no valid frame received within %d seconds", waitTimeout)

		case data, ok := <-chunks:
			if !ok {
				return ErrConnectionClosed
			}
			for _, b := range data {
				f, _, _ := sd.feed(b)
				if f == nil {
					continue
				}
				if sd.skipped > 0 {
					fmt.Fprintf(out, "(skipped %d invalid bytes before sync)\n", sd.skipped)
				}
				fmt.Fprintf(out, "SUCCESS: Received valid frame\n")
				fmt.Fprintf(out, "  Length: %d bytes\n", f.Length())
				fmt.Fprintf(out, "  %s: 0x%s\n", model.Name(), crc.FormatHex(f.Checksum(), model.Width()))
				return nil
			}
		}
	}
}

// runTUIMode runs the monitor in the terminal UI
func runTUIMode(ctx context.Context, conn Connection, connInfo string, model *crc.Model) error {
	m := initialMonitorModel(connInfo, model, statsInterval, showAll, monitorReconnect)
	p := tea.NewProgram(m)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := func(conn Connection) {
		sd := newSyncDecoder(model)
		for data := range readChunks(conn) {
			for _, b := range data {
				f, synced, err := sd.feed(b)
				if synced {
					p.Send(syncMsg{invalidBytes: sd.skipped})
				}
				if err != nil || f != nil {
					p.Send(frameDataMsg{frame: f, decodeErr: err})
				}
			}
		}
	}

	cm := newConnectionManager(OpenConnection, conn, connInfo)
	defer cm.close()

	go func() {
		if monitorReconnect {
			cm.run(ctx, stream, p.Send)
			return
		}
		stream(conn)
		p.Send(connLostMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
