// Package output renders server replies for redmod-cli.
//
// Three formats are supported: raw mimics the interactive output of
// redis-cli, json and yaml convert the reply into plain data for
// scripting.
package output
