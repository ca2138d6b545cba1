package camera

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// VideoGrabber reads frames from an OpenCV capture device and reduces
// each to its mean red-channel intensity.
type VideoGrabber struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// OpenVideoGrabber opens the camera at the given device index
// (0 is usually the built-in webcam).
func OpenVideoGrabber(deviceID int) (*VideoGrabber, error) {
	cap, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, errors.Wrapf(err, "open camera %d", deviceID)
	}
	if !cap.IsOpened() {
		_ = cap.Close()
		return nil, errors.Errorf("camera %d did not open", deviceID)
	}

	return &VideoGrabber{
		cap: cap,
		mat: gocv.NewMat(),
	}, nil
}

func (g *VideoGrabber) Grab() (float64, error) {
	if ok := g.cap.Read(&g.mat); !ok || g.mat.Empty() {
		return 0, errors.New("failed to read frame")
	}

	// frames are BGR; Val3 is the red-channel mean
	mean := g.mat.Mean()
	return mean.Val3, nil
}

func (g *VideoGrabber) Close() error {
	if err := g.mat.Close(); err != nil {
		return errors.Wrap(err, "close mat")
	}
	return errors.Wrap(g.cap.Close(), "close capture")
}
