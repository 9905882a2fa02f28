package digest

import (
	"errors"
	"os"
	"syscall"
)

// isCrossDevice reports whether err is the "invalid cross-device link"
// failure os.Rename returns when src and dst live on different
// filesystems. Checked portably via syscall.Errno rather than a
// platform build-tagged file, since EXDEV has the same meaning on every
// platform Go supports (§9: "rename is not atomic across devices").
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		err = linkErr.Err
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EXDEV
	}
	return false
}
