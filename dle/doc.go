// Package dle provides a Go implementation of DLE based byte stuffing.  This
// is the classic framing scheme for byte oriented transports like serial
// links: reserved control bytes inside a payload are escaped with the DLE
// character so that frame boundaries can be recognized unambiguously in the
// raw byte stream.  Two variants are supported, one which escapes the STX and
// ETX markers inside the payload and one which uses the two-byte sequences
// `DLE STX` and `DLE ETX` as frame markers instead.
package dle
