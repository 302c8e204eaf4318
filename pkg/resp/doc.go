// Package resp implements the RESP2 wire format used by redmod.
//
// The package is split into three parts:
//
//   - value.go: the closed Value variant and its constructors
//   - encode.go: framing of Values into bytes
//   - parse.go / reader.go: decoding of bytes into Values, from a buffer
//     or from a stream
//
// Wire framing:
//
//	+<text>\r\n             simple string
//	-<text>\r\n             error
//	:<n>\r\n                integer
//	$<len>\r\n<bytes>\r\n   bulk string ($-1\r\n is the null bulk string)
//	*<n>\r\n<elements...>   array (*-1\r\n is the null array)
//
// Lines that do not start with a type tag are read as inline commands and
// surface as simple strings, so that telnet-style clients work.
package resp
