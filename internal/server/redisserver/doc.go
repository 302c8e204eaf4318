// Package redisserver serves the command engine and the pub/sub hub over
// RESP2 on TCP.
//
// Every connection runs two goroutines. The reader decodes frames with
// resp.Reader and dispatches them in arrival order; the writer drains the
// connection's outbound queue. Replies and pub/sub pushes share that queue,
// so a client always sees them in the order they were produced. A client
// that stops reading fills its queue and is disconnected.
//
// Connection-level commands (PING, ECHO, QUIT, AUTH, SELECT, CLIENT, INFO,
// COMMAND, SUBSCRIBE, UNSUBSCRIBE, PUBLISH, PUBSUB) are handled here. All
// other commands go to the engine.
//
// Undecodable input is answered with "-ERR Protocol error: ..." and the
// connection is closed once the reply is flushed.
package redisserver
