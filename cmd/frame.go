// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/crcengine/internal/log"
	"github.com/Thermoquad/crcengine/pkg/crc"
	"github.com/Thermoquad/crcengine/pkg/frame"
	"github.com/spf13/cobra"
)

var (
	frameAlgorithm string
	frameMessage   messageFlags
	frameSend      bool
	frameCount     int
	frameInterval  int
)

var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Encode and decode CRC-protected frames",
	Long: `Wrap payloads in byte-stuffed frames protected by any catalog CRC, or decode
captured frame bytes.

Wire format:
  START(0x7E) | LEN | PAYLOAD | CRC (big-endian, ceil(width/8) bytes) | END(0x7F)

LEN, PAYLOAD and CRC are byte-stuffed: 0x7E, 0x7F and 0x7D become 0x7D
followed by the byte XOR 0x20.`,
}

var frameEncodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a payload as a frame",
	Long: `Encode a payload as a frame and print the wire bytes in hex.

With --send the frame is written to the connection selected by --port or
--url, --count times with --interval milliseconds between writes.

Examples:
  crcengine frame encode -a CRC-16/CCITT-FALSE -s hello
  crcengine frame encode -a CRC-32 -x "01 02 03" --send --port /dev/ttyUSB0`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFrameEncode,
}

var frameDecodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode frames from captured bytes",
	Long: `Decode every frame found in the given bytes (use --hex for hex text) and
report CRC and framing errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFrameDecode,
}

func init() {
	rootCmd.AddCommand(frameCmd)
	frameCmd.AddCommand(frameEncodeCmd)
	frameCmd.AddCommand(frameDecodeCmd)

	frameCmd.PersistentFlags().StringVarP(&frameAlgorithm, "algorithm", "a", "CRC-16/CCITT-FALSE", "Catalog algorithm protecting each frame")
	addMessageFlags(frameEncodeCmd, &frameMessage)
	addMessageFlags(frameDecodeCmd, &frameMessage)

	frameEncodeCmd.Flags().BoolVar(&frameSend, "send", false, "Write the frame to the connection")
	frameEncodeCmd.Flags().IntVar(&frameCount, "count", 1, "Number of times to send the frame")
	frameEncodeCmd.Flags().IntVar(&frameInterval, "interval", 100, "Delay between sends in milliseconds")
}

func runFrameEncode(cmd *cobra.Command, args []string) error {
	model, err := crc.Lookup(frameAlgorithm)
	if err != nil {
		return err
	}

	payload, err := frameMessage.read(cmd, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	wire, err := frame.NewEncoder(model).Encode(payload)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatHexBytes(wire))

	if !frameSend {
		return nil
	}

	conn, connInfo, err := OpenConnection(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	for i := 1; i <= frameCount; i++ {
		if _, err := conn.Write(wire); err != nil {
			return fmt.Errorf("send %d/%d failed: %w", i, frameCount, err)
		}
		log.Debugw("frame sent", "n", i, "bytes", len(wire))

		if i < frameCount {
			time.Sleep(time.Duration(frameInterval) * time.Millisecond)
		}
	}
	fmt.Fprintf(out, "Sent %d frame(s) of %d bytes\n", frameCount, len(wire))
	return nil
}

func runFrameDecode(cmd *cobra.Command, args []string) error {
	model, err := crc.Lookup(frameAlgorithm)
	if err != nil {
		return err
	}

	data, err := frameMessage.read(cmd, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	frames, errs := frame.Decode(model, data)

	out := cmd.OutOrStdout()
	for _, f := range frames {
		fmt.Fprint(out, frame.FormatFrame(f, model))
	}
	for _, e := range errs {
		fmt.Fprintf(out, "%s %v\n", errorStyle.Render("ERROR"), e)
	}
	fmt.Fprintf(out, "%d frame(s), %d error(s)\n", len(frames), len(errs))

	if len(errs) > 0 {
		return fmt.Errorf("%d decode error(s)", len(errs))
	}
	return nil
}

// formatHexBytes renders data as space separated upper-case hex pairs
func formatHexBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
