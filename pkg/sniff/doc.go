// Package sniff classifies a byte stream by looking at its leading bytes.
//
// Compressed formats start with a fixed signature (magic number). A Table
// holds the known signatures and matches them longest first, so that a short
// signature never shadows a longer one sharing the same prefix. Sniffing
// happens through bufio.Reader.Peek, which leaves every inspected byte in the
// stream for the decoder that comes next.
package sniff
