package livefeed

// Client is one subscriber of the feed. The hub only ever writes to it.
type Client interface {
	// GetID identifies the connection in logs.
	GetID() string
	// GetSendChannel is where the hub pushes encoded events.
	GetSendChannel() chan<- []byte
	// Run starts the client's pumps.
	Run()
	// Close stops the write pump; called by the hub exactly once.
	Close()
}
