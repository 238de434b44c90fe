// Package main hosts the vidsync CLI entrypoint and command graph.
//
// The Cobra-based command tree registers two videos with a comparison
// session, drives the session on a local loop, and renders its events as a
// live progress line and result tables. Configuration resolution, logger
// construction, and signature-store wiring live here so subcommands only pick
// the operation to start and how to print its outcome.
package main
