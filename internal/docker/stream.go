package docker

import (
	"bufio"
	"io"

	"github.com/docker/docker/pkg/stdcopy"
)

const (
	logScannerInitial = 64 * 1024
	logScannerMax     = 1024 * 1024
)

// Lines reads r line by line and calls emit for every line until the stream
// ends or emit returns false. Non-TTY containers get their stdout and
// stderr multiplexed into one stream with 8-byte frame headers; tty
// controls whether that framing is stripped first.
//
// Cancellation is the caller's job: closing or erroring the underlying
// stream makes Lines return.
func Lines(r io.Reader, tty bool, emit func(string) bool) error {
	if !tty {
		pr, pw := io.Pipe()
		// Closing pr below unblocks the copier if the consumer bails out
		// before the stream is drained.
		defer pr.Close() //nolint:errcheck // pipe close never fails
		src := r
		go func() {
			_, err := stdcopy.StdCopy(pw, pw, src)
			_ = pw.CloseWithError(err)
		}()
		r = pr
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, logScannerInitial), logScannerMax)
	for scanner.Scan() {
		if !emit(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}
