// Package messaging is a small broker-agnostic publish/consume abstraction.
//
// Two drivers exist: "nats" for deployments and "memory", an in-process bus
// for tests and single-binary development. Handlers receive a Message and
// return an error; with auto-ack enabled a nil error acks and a non-nil error
// nacks so the broker may redeliver.
package messaging
