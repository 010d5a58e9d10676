package messaging

import "log"

// NotifySink wraps a Producer as a fire-and-forget notification sink: on a
// ChannelQueue it never blocks the caller, on any other Producer it calls
// Produce synchronously, and either way it swallows its own errors,
// logging them instead.
// The worker loop hands it Page Record events without ever waiting on a
// webhook, metrics exporter, or other external collaborator.
type NotifySink struct {
	producer Producer
	logger   *log.Logger
}

// NewNotifySink wraps a Producer. If producer is nil, Notify is a no-op.
func NewNotifySink(producer Producer, logger *log.Logger) NotifySink {
	return NotifySink{producer: producer, logger: logger}
}

// Notify attempts delivery through the wrapped Producer. If the producer
// is a ChannelQueue, TryProduce is used so a slow/blocked consumer never
// stalls the worker; for arbitrary Producers, Produce is invoked and any
// error is logged and discarded.
func (n NotifySink) Notify(payload []byte) {
	if n.producer == nil {
		return
	}
	if cq, ok := n.producer.(ChannelQueue); ok {
		if !cq.TryProduce(payload) && n.logger != nil {
			n.logger.Println("notify: dropped payload, sink is not keeping up")
		}
		return
	}
	if err := n.producer.Produce(payload); err != nil && n.logger != nil {
		n.logger.Println("notify: best-effort delivery failed:", err)
	}
}
