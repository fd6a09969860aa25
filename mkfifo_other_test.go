//go:build !unix

package pkgar

import "errors"

func mkfifo(path string) error {
	return errors.New("named pipes are not supported on this platform")
}
