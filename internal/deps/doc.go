// Package deps checks for the external media tools vidsync shells out to.
//
// CheckBinaries resolves each requirement on PATH; ProbeVersion asks a tool
// for its version banner so status output can show what will actually run.
package deps
