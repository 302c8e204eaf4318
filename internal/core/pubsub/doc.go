// Package pubsub implements the channel subscription index and message
// fan-out.
//
// The Hub keeps two mirrored indexes, client to channels and channel to
// clients, and prunes empty entries from both immediately. It never writes
// to a network: every subscription change and every delivered message is
// reported to the registered listeners, and the connection layer turns
// those notifications into frames on the right socket.
//
// Listeners run synchronously with the hub lock held, in registration
// order. They must not call back into the Hub.
package pubsub
