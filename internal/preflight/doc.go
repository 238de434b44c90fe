// Package preflight provides readiness checks for the filesystem paths and
// external tools vidsync depends on.
//
// The CLI "vidsync check" command runs RunAll and CheckSystemDeps and prints
// the outcome; comparison commands run CheckSystemDeps first so a missing
// ffmpeg fails fast instead of scoring every frame as undecodable.
package preflight
