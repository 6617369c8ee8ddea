// Package utils holds small helpers shared by the agentui commands that do
// not warrant a package of their own.
package utils

// Build information, overwritten with -ldflags "-X" by release builds.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
