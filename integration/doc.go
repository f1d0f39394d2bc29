// Package integration contains container-based tests that serve a
// generated web tree with a stock static file server and exercise the
// depot protocol endpoints over HTTP, the way a real pkg(7) client
// would reach them.
//
// Run with: go test -tags integration ./integration/
package integration
