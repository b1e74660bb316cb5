// Package zip_agnostic provides types and functions to deal with byte stream in
// a manner that is agnostic to the compression format, or its absence thereof.
//
// For example, if r is a reader over zstd, gzip, bzip2, xz, lzma or lz4
// compressed data, NewReader(r) returns a Decoder that reads the decompressed
// byte stream. If r reads non compressed data, or data that is compressed in a
// non-supported or non-recognized format, then the Decoder simply forwards the
// data in r.
//
// Decoders created with NewDecoder skip detection and decode r with the given
// format, which is what callers wanting to control the sniffing step (see
// package sniff) use.
//
// A Decoder returns io.EOF only when the compressed stream ended cleanly. A
// corrupted or truncated stream always results in a *ReadError.
package zip_agnostic
