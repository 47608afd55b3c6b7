// Package notifier delivers validated contact submissions through the configured
// channels and folds the per-channel outcomes into one verdict.
//
// # Channels
//
//   - Email (awaited): owner notification with Reply-To set to the submitter,
//     followed by a best-effort auto-reply. The notification result is the
//     channel outcome.
//   - Chat (detached): a Telegram message sent from its own goroutine. Its
//     outcome is logged and counted, never returned to the caller.
//
// # Verdict
//
// Lenient (default): success when email was sent, or when email was not sent
// but a chat channel is configured. The chat send is attempted whenever it is
// configured, regardless of the email outcome.
//
// Strict: when email was not sent the dispatcher waits for the chat send, and
// success requires it to report sent.
//
// Dispatch never panics and never returns an error. Wait blocks until every
// detached chat send has finished.
package notifier
