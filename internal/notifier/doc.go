// Package notifier pushes fired-alarm messages to an ntfy topic.
//
// The service is optional: when no topic is configured a noop implementation
// is returned. Push failures are logged and swallowed so the alarm engine
// never stalls on a slow or unreachable endpoint.
package notifier
