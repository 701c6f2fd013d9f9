package main

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/images/cv"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

// runner executes a model on one preprocessed input blob.
type runner interface {
	Run(ctx context.Context, blob []float32) (*postprocess.Tensor, error)
}

// detect runs the full pipeline on img: preprocess, inference, post-process and labelling.
func detect(ctx context.Context, m model.Model, r runner, img *images.Image) ([]model.Detection, error) {
	pre, err := m.PreProcess(img)
	if err != nil {
		return nil, errors.Wrap(err, "preprocess")
	}

	output, err := r.Run(ctx, pre.Data)
	if err != nil {
		return nil, errors.Wrap(err, "inference")
	}

	detections, err := m.Detect(output, pre.OriginalWidth, pre.OriginalHeight)
	if err != nil {
		return nil, errors.Wrap(err, "postprocess")
	}
	return detections, nil
}

// loadImage decodes the file at path into a 3-channel RGB image.
func loadImage(path string, useOpenCV bool) (*images.Image, error) {
	if useOpenCV {
		return loadImageOpenCV(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", path)
	}

	img, err := images.FromImage(src)
	if err != nil {
		return nil, err
	}
	img.Format = imageFormat(format)
	return img, nil
}

// loadImageOpenCV reads path with OpenCV and converts its BGR pixels to RGB.
func loadImageOpenCV(path string) (*images.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.Errorf("opencv could not read image %s", path)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)

	return cv.FromMat(rgb)
}

func imageFormat(name string) images.ImageFormat {
	switch name {
	case "jpeg":
		return images.FormatJPEG
	case "png":
		return images.FormatPNG
	case "webp":
		return images.FormatWebP
	default:
		return images.FormatRaw
	}
}
