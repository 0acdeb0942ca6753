package frameio

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/cenkalti/backoff"
)

// OpenRetry opens path, retrying with exponential backoff while the file
// does not exist yet.  Capture tools often create the file a moment after
// announcing it.  Any error other than fs.ErrNotExist is returned at once.
// maxWait bounds the total time spent; zero means a single attempt.
func OpenRetry(ctx context.Context, path string, maxWait time.Duration) (*os.File, error) {
	var fh *os.File
	op := func() error {
		var err error
		fh, err = os.Open(path)
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) && maxWait > 0 {
			return err
		}
		return backoff.Permanent(err)
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     10 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         500 * time.Millisecond,
		MaxElapsedTime:      maxWait,
		Clock:               backoff.SystemClock}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return fh, nil
}

// ReadFile opens path with OpenRetry and decodes it
func ReadFile(ctx context.Context, path string, maxWait time.Duration) (*Image, error) {
	fh, err := OpenRetry(ctx, path, maxWait)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(fh)
}
