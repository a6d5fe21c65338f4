package listener

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxLineLength bounds a single command line; longer lines are dropped.
const maxLineLength = 4096

// ListenToSocket accepts connections on a unix socket and forwards each line until ctx is done.
// Any stale socket file at path is replaced.
func ListenToSocket(ctx context.Context, logger *log.Logger, path string, sink Sink) error {
	if logger == nil {
		logger = log.Default()
	}
	os.Remove(path)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", path)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		logger.Println("Closing IPC...")
		return listener.Close()
	})
	g.Go(func() error {
		logger.Printf("start listening on %s...\n", path)
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			g.Go(func() error {
				return receiveCommands(ctx, logger, conn, sink)
			})
		}
	})
	return g.Wait()
}

func receiveCommands(ctx context.Context, logger *log.Logger, conn net.Conn, sink Sink) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Printf("error while closing connection: %v\n", err)
		}
	}()
	reader := bufio.NewReader(conn)
	var line []byte
	skipping := false
	for {
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF || ctx.Err() != nil {
			break
		}
		if err != nil {
			// only this connection ends
			logger.Printf("read error: %v\n", err)
			break
		}
		if !skipping {
			line = append(line, next...)
			if len(line) > maxLineLength {
				logger.Printf("line too long (> %d bytes), dropped\n", maxLineLength)
				skipping = true
				line = line[:0]
			}
		}
		if isPrefix {
			continue
		}
		if !skipping {
			if command := strings.TrimSpace(string(line)); command != "" {
				sink.Send(command)
				logger.Printf("received: %s\n", command)
			}
		}
		skipping = false
		line = line[:0]
	}
	logger.Println("receiveCommands() ended.")
	return nil
}
