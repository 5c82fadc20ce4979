// Package tlsroots builds the trust roots for talking to a fitness plan
// service over https.
//
// By default the platform roots are used. A service behind a private CA is
// reached by pointing server.ca_file at a PEM bundle; its certificates are
// added on top of the system pool.
package tlsroots
