// Package normalisers holds the document readers that turn raw payloads
// into page text. Each reader implements driven.DocumentReader.
//
// Only PDF is supported; see the pdf subpackage.
package normalisers
