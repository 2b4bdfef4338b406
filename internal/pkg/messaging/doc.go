// Package messaging publishes and consumes broker messages behind one API so
// usecases do not care whether NATS, NSQ, Kafka, Google Pub/Sub or the in-process memory
// broker is configured.
package messaging
