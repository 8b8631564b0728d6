// Package keys loads RSA key material for token signing and verification.
//
// A [Source] yields PEM bytes from somewhere (memory, files, environment,
// Redis); [Load] parses them into a [KeyPair]. Sources only read: creating,
// storing and rotating keys is left to the operator.
package keys
