//go:build nospecfunc
// +build nospecfunc

package specfunc

// Default returns the stand-in backend: this build carries no special functions.
func Default() Backend {
	return Unavailable()
}
