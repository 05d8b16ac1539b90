//go:build !windows

package tui

func enableVT() {}
