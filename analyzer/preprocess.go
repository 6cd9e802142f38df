package analyzer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// inputSize is the spatial size the classifier was trained on.
const inputSize = 224

// Per-channel normalization constants matching the training transform.
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// DecodeImage reads a radiograph from disk. Failures wrap ErrImageDecode.
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}
	return img, nil
}

// PreprocessImage decodes an image file and produces the classifier input:
// 3-channel color, 224x224 bilinear resize, values scaled to [0,1] and
// normalized per channel, arranged as an NCHW float32 tensor.
func PreprocessImage(path string) ([]float32, error) {
	img, err := DecodeImage(path)
	if err != nil {
		return nil, err
	}
	return preprocess(img), nil
}

func preprocess(img image.Image) []float32 {
	dst := image.NewNRGBA(image.Rect(0, 0, inputSize, inputSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	const plane = inputSize * inputSize
	data := make([]float32, 3*plane)
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			off := dst.PixOffset(x, y)
			pix := y*inputSize + x
			for c := 0; c < 3; c++ {
				v := float32(dst.Pix[off+c]) / 255
				data[c*plane+pix] = (v - channelMean[c]) / channelStd[c]
			}
		}
	}
	return data
}
