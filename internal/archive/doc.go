// Package archive packs a mirrored repository directory into a gzip-compressed
// tarball, optionally piping the stream through openssl for encryption.
//
// Encrypted archives are restored with:
//
//	openssl aes-128-ecb -d -k <password> -salt -pbkdf2 -iter 10000 -in <file> | tar -zxvf -
package archive
