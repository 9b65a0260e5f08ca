// Package raveerr defines the sentinel error categories shared across Raven
// Terminal's subsystems, wrapped with fmt.Errorf("%w", ...) at call sites.
package raveerr

import "errors"

var (
	// ErrConfiguration covers malformed TOML/JSON config or invalid dimensions.
	ErrConfiguration = errors.New("configuration error")
	// ErrIO covers file and PTY I/O failures.
	ErrIO = errors.New("i/o error")
	// ErrRender covers renderer/GPU surface failures.
	ErrRender = errors.New("render error")
	// ErrPty covers PTY spawn/resize/write failures.
	ErrPty = errors.New("pty error")
	// ErrPlugin covers plugin load/manifest/capability/runtime failures.
	ErrPlugin = errors.New("plugin error")
	// ErrGeneric is a catch-all for errors that don't fit another category.
	ErrGeneric = errors.New("error")
)

// Is reports whether err ultimately wraps target, a thin re-export of
// errors.Is kept local so callers only need to import this package.
func Is(err, target error) bool { return errors.Is(err, target) }
