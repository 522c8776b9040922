package irc

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Pacing between queued sends. Hard flood control is enforced server-side;
// this only keeps the bot from bursting.
const sendDelay = 300 * time.Millisecond

// LineWriter is the transport half the sender needs.
type LineWriter interface {
	WriteLine(line string) error
}

// Sender owns the outbound half of a session: a paced queue for normal chat
// traffic and an immediate lane that bypasses it (used for PONG, capability
// requests and protocol commands).
type Sender struct {
	channel   string
	queue     chan string
	immediate chan string
	done      chan error
}

func NewSender(channel string) *Sender {
	return &Sender{
		channel:   channel,
		queue:     make(chan string, 64),
		immediate: make(chan string, 16),
		done:      make(chan error, 1),
	}
}

// Run is the writer pump. It ends when the context is canceled or a write
// fails; the terminal error is delivered on Done.
func (s *Sender) Run(ctx context.Context, w LineWriter) {
	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case line := <-s.immediate:
			if err = w.WriteLine(line); err != nil {
				break loop
			}
		case line := <-s.queue:
			if err = w.WriteLine(line); err != nil {
				break loop
			}
			time.Sleep(sendDelay)
		}
	}
	s.done <- err
}

// Done delivers the writer pump's terminal error. The event loop treats the
// pump ending for any reason as a connection failure.
func (s *Sender) Done() <-chan error {
	return s.done
}

// Channel is the chat channel this sender is bound to.
func (s *Sender) Channel() string {
	return s.channel
}

// Privmsg queues a chat message, subject to pacing.
func (s *Sender) Privmsg(text string) {
	s.enqueue(s.queue, fmt.Sprintf("PRIVMSG %s :%s", s.channel, text))
}

// PrivmsgImmediate sends a chat message on the immediate lane.
func (s *Sender) PrivmsgImmediate(text string) {
	s.enqueue(s.immediate, fmt.Sprintf("PRIVMSG %s :%s", s.channel, text))
}

// SendImmediate sends a raw protocol line on the immediate lane.
func (s *Sender) SendImmediate(line string) {
	s.enqueue(s.immediate, line)
}

// CapReq requests a protocol capability.
func (s *Sender) CapReq(cap string) {
	s.SendImmediate("CAP REQ :" + cap)
}

// Mods requests the moderator list for the channel.
func (s *Sender) Mods() {
	s.PrivmsgImmediate("/mods")
}

// Vips requests the VIP list for the channel.
func (s *Sender) Vips() {
	s.PrivmsgImmediate("/vips")
}

// Delete asks the server to delete the message with the given id.
func (s *Sender) Delete(id string) {
	s.PrivmsgImmediate("/delete " + id)
}

// Ping sends a liveness probe.
func (s *Sender) Ping(server string) {
	s.SendImmediate("PING :" + server)
}

// Pong answers a server probe.
func (s *Sender) Pong(token string) {
	if token == "" {
		s.SendImmediate("PONG")
		return
	}
	s.SendImmediate("PONG :" + token)
}

func (s *Sender) enqueue(ch chan string, line string) {
	select {
	case ch <- line:
	default:
		log.Printf("irc: send queue full, dropping: %s", line)
	}
}
