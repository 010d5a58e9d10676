// Package messaging contains the notification and result-transport
// abstractions the crawl engine hands results and events to. Backends could
// be an in-memory channel (used by local-mode crawls and tests), or a
// RabbitMQ/Kafka/Redis driver in a real deployment; the core never imports a
// concrete broker, only these interfaces.
package messaging

// Producer exposes a single Produce method meant to enqueue a payload of
// bytes onto a queue or topic.
type Producer interface {
	Produce([]byte) error
}

// Consumer connects to a queue, blocking while consuming incoming payloads
// and forwarding them onto a push-only channel.
type Consumer interface {
	Consume(chan<- []byte) error
}

// ProducerConsumer is the behavior of a simple message queue: it can
// Produce and Consume.
type ProducerConsumer interface {
	Producer
	Consumer
}

// ProducerConsumerCloser is a ProducerConsumer that owns an external
// connection which must be explicitly torn down.
type ProducerConsumerCloser interface {
	ProducerConsumer
	Close()
}
