package ports

// Publisher fans an event out to every client currently subscribed to the
// topic. Delivery is best-effort and at-most-once per subscriber per call;
// clients that connect later never see earlier events.
type Publisher interface {
	Publish(topic, eventType string, payload interface{})
}
