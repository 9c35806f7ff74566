package usecase

import (
	"blogchat/internal/ports"
)

// chatSession is one live connection instance. Closed or errored sessions
// are discarded; reconnecting always builds a fresh one.
type chatSession struct {
	id       string
	cancel   func()
	stream   ports.ChatStream
	pumpDone chan struct{}
}
