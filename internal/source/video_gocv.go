//go:build gocv

package source

import (
	"fmt"
	"io"
	"path/filepath"

	"gocv.io/x/gocv"
)

// Video reads frames from a video file through OpenCV.
type Video struct {
	name    string
	capture *gocv.VideoCapture
	mat     gocv.Mat
	index   int
}

// OpenVideo opens a video file.
func OpenVideo(path string) (*Video, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open video %s", path)
	}
	return &Video{name: filepath.Base(path), capture: capture, mat: gocv.NewMat()}, nil
}

// Next grabs and converts the next frame.
func (v *Video) Next() (Frame, error) {
	if ok := v.capture.Read(&v.mat); !ok || v.mat.Empty() {
		return Frame{}, io.EOF
	}
	v.index++
	frame := Frame{Index: v.index, Name: fmt.Sprintf("%s#%06d", v.name, v.index)}

	img, err := v.mat.ToImage()
	if err != nil {
		return frame, fmt.Errorf("failed to convert frame: %w", err)
	}
	frame.Image = img
	return frame, nil
}

// Close releases the capture and the frame buffer.
func (v *Video) Close() error {
	if err := v.mat.Close(); err != nil {
		v.capture.Close()
		return err
	}
	return v.capture.Close()
}
