package notifier

import "context"

// NoOpNotifier drops every alert.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) Notify(context.Context, Alert) error {
	return nil
}

func (n *NoOpNotifier) AlertAccountFailure(context.Context, string, error) error {
	return nil
}

func (n *NoOpNotifier) AlertRefreshFailure(context.Context, string, []string) error {
	return nil
}
