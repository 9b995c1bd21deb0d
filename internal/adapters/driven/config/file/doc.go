// Package file stores settings in ~/.sercha-pdf/config.toml.
package file
