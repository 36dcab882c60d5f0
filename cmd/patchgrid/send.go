package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "send [flags] <message>",
		Short: "Send a control message to a running display",
		Long: `Send delivers one protocol line to the display as a UDP datagram.
With no arguments, lines are read from stdin and sent one datagram each.`,
		Example: `  # Set a cell's text
  patchgrid send "0 0 #fff #000 hello"

  # Move a bar
  patchgrid send "BARVAL 3 1 99"

  # Replay a captured session
  patchgrid send < session.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.Dial("udp", addr)
			if err != nil {
				return fmt.Errorf("dialing %s: %w", addr, err)
			}
			defer conn.Close()

			if len(args) > 0 {
				_, err := conn.Write([]byte(strings.Join(args, " ")))
				return err
			}

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				if _, err := conn.Write([]byte(line)); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9001", "Display address")

	return cmd
}
