// Package uniuri generates cryptographically secure random strings. The
// daemon uses it for generated initial passwords.
package uniuri
