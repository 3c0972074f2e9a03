//go:build !gocv

package source

// Video is unavailable without the gocv build tag.
type Video struct{}

// OpenVideo always fails without the gocv build tag.
func OpenVideo(path string) (*Video, error) {
	return nil, ErrVideoUnavailable
}

// Next is never reached; OpenVideo fails.
func (v *Video) Next() (Frame, error) {
	return Frame{}, ErrVideoUnavailable
}

// Close does nothing.
func (v *Video) Close() error {
	return nil
}
