// Package console reads chart commands line by line, e.g. from stdin.
//
//	sub SYMBOL      subscribe (replaces the active symbol)
//	unsub SYMBOL    send an unsubscribe, keep the chart
//	interval 1|5    re-bucket at 1 or 5 minutes
//	disconnect      unsubscribe and close the feed
//	show            print the current chart
//	quit            stop
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pricechart/internal/chart/subscription"

	"go.uber.org/zap"
)

// ErrQuit is returned by Run when the quit command is read.
var ErrQuit = errors.New("quit")

// Commander is the subset of *subscription.Manager the console drives.
type Commander interface {
	Subscribe(symbol string)
	Unsubscribe(symbol string)
	Disconnect()
	SetInterval(minutes int) error
	State() subscription.State
}

// Run executes commands from r until it is exhausted, ctx is done or quit is
// read. Replies are written to out.
func Run(ctx context.Context, r io.Reader, out io.Writer, c Commander, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := execute(line, out, c, logger); err != nil {
				return err
			}
		}
	}
}

func execute(line string, out io.Writer, c Commander, logger *zap.Logger) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	logger.Debug("console command", zap.String("cmd", cmd), zap.Strings("args", args))

	switch cmd {
	case "sub", "subscribe":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: sub SYMBOL")
			return nil
		}
		c.Subscribe(strings.ToUpper(args[0]))
	case "unsub", "unsubscribe":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: unsub SYMBOL")
			return nil
		}
		c.Unsubscribe(strings.ToUpper(args[0]))
	case "interval":
		if len(args) != 1 {
			fmt.Fprintln(out, "usage: interval 1|5")
			return nil
		}
		minutes, err := strconv.Atoi(strings.TrimSuffix(args[0], "m"))
		if err != nil {
			fmt.Fprintf(out, "bad interval %q\n", args[0])
			return nil
		}
		if err := c.SetInterval(minutes); err != nil {
			fmt.Fprintln(out, err)
		}
	case "disconnect":
		c.Disconnect()
	case "show":
		show(out, c.State())
	case "quit", "exit":
		return ErrQuit
	default:
		fmt.Fprintf(out, "unknown command %q\n", cmd)
	}
	return nil
}

func show(out io.Writer, st subscription.State) {
	if st.Symbol == "" {
		fmt.Fprintf(out, "no symbol (connected=%t)\n", st.Connected)
		return
	}

	title := st.Symbol
	if len(st.Chart.Datasets) > 0 {
		title = st.Chart.Datasets[0].Label
	}
	fmt.Fprintf(out, "%s connected=%t raw=%d\n", title, st.Connected, st.RawLen)
	for _, p := range st.Points {
		fmt.Fprintf(out, "  %s  %.4f  (%d)\n", p.DisplayTime, p.AvgPrice, p.Samples)
	}
}
