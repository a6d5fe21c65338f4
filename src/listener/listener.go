// Package listener turns external control sources into synth command lines.
package listener

// Sink receives command lines. Send must not block.
type Sink interface {
	Send(line string) bool
}
