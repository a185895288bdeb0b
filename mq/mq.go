package mq

import "context"

// MessageQueue carries durable background jobs, currently just gallery clear
// requests. Receive blocks up to the transport's poll interval and returns
// nil when no message is waiting.
type MessageQueue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, visibilityTimeout int32) (*Message, error)
	Delete(ctx context.Context, msg *Message) error
}

type Message struct {
	Id   string
	Body string
}
