package frameio

import (
	"context"
	"io"
	"sync"
	"time"
)

// FileSource replays FITS files as a frame.Source, one file per frame.
// GetRes loads the next file and GetFrameU16 hands out its pixels; once
// every path has been served both return io.EOF.
type FileSource struct {
	sync.Mutex

	// Paths are read in order
	Paths []string

	// Wait is how long to wait for a path that does not exist yet
	Wait time.Duration

	next int
	cur  *Image
}

// NewFileSource returns a source over paths
func NewFileSource(wait time.Duration, paths ...string) *FileSource {
	return &FileSource{Paths: paths, Wait: wait}
}

// Current returns the last image loaded by GetRes, or nil
func (s *FileSource) Current() *Image {
	s.Lock()
	defer s.Unlock()
	return s.cur
}

// GetRes loads the next file and returns its width and height
func (s *FileSource) GetRes() ([2]int, error) {
	s.Lock()
	defer s.Unlock()
	if s.next >= len(s.Paths) {
		return [2]int{}, io.EOF
	}
	im, err := ReadFile(context.Background(), s.Paths[s.next], s.Wait)
	s.next++
	if err != nil {
		return [2]int{}, err
	}
	s.cur = im
	return [2]int{im.Width, im.Height}, nil
}

// GetFrameU16 returns the pixels of the file loaded by the last GetRes
func (s *FileSource) GetFrameU16() ([]uint16, error) {
	s.Lock()
	defer s.Unlock()
	if s.cur == nil {
		return nil, io.EOF
	}
	return s.cur.U16(), nil
}
