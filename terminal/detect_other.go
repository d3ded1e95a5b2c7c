//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package terminal

// DetectColorMode assumes a modern console on non-unix hosts
func DetectColorMode() ColorMode {
	return ColorModeTrueColor
}

func resetTerminalMode() {}
