// Package workspace describes the on-disk workspace layout and the environment
// lookups around it.
//
// A workspace is a directory holding package sources under src/ and build output
// under build/. Outside a workspace, hack mode consults a search path of extra
// directories and writes its output to a default workspace.
package workspace
