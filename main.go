package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"

	pigo "github.com/esimov/pigo/core"
	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"

	"facekit/config"
	"facekit/faces"
	"facekit/fcn"
	"facekit/imaging"
	"facekit/queue"
	"facekit/utils"
)

func main() {
	var (
		inDir       = flag.String("in", "", "Folder containing the source images")
		outDir      = flag.String("out", "", "Folder for annotated output")
		cascadeFile = flag.String("cf", "", "Pigo cascade binary file")
		angle       = flag.Float64("angle", 0, "Pre-rotation applied before detection, in degrees")
		minSize     = flag.Int("min", 20, "Minimum face size")
		maxSize     = flag.Int("max", 1000, "Maximum face size")
		weightFile  = flag.String("weights", "", "Optional FCN-VGG16 weight dictionary to convert")
	)
	flag.Parse()
	config.ApplyLogLevel()

	if *inDir == "" || *outDir == "" || *cascadeFile == "" {
		log.Fatal("Usage: facekit -in images/ -out annotated/ -cf data/facefinder [-angle 90]")
	}

	if _, err := utils.GetFolder(*outDir); err != nil {
		log.Fatalf("Cannot create output folder: %v", err)
	}
	if *weightFile != "" {
		modelFile := filepath.Join(*outDir, fcn.ModelName+".gob")
		if _, err := fcn.GenerateModel(*weightFile, modelFile); err != nil {
			log.Fatalf("Model conversion failed: %v", err)
		}
	}

	paths, err := utils.GetImagePaths(*inDir)
	if err != nil {
		log.Fatalf("Cannot list images in %s: %v", *inDir, err)
	}
	if len(paths) == 0 {
		log.Warnf("No images found in %s", *inDir)
		return
	}

	cascade, err := os.ReadFile(*cascadeFile)
	if err != nil {
		log.Fatalf("Cannot read cascade file: %v", err)
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		log.Fatalf("Cannot unpack cascade file: %v", err)
	}

	manager := queue.NewManager(config.QUEUE_SIZE)
	runner := queue.NewRunner(config.WORKER_COUNT)
	images := manager.Add("images")

	var faceCount int64
	for i := 0; i < config.WORKER_COUNT; i++ {
		runner.Submit(fmt.Sprintf("worker-%d", i), func() error {
			var firstErr error
			// Keep draining even after a failure so the producer never blocks.
			for item := range images {
				path := item.(string)
				found, err := processImage(classifier, path, *outDir, *angle, *minSize, *maxSize)
				if err != nil {
					log.Errorf("Processing %s: %v", path, err)
					if firstErr == nil {
						firstErr = fmt.Errorf("processing %s: %w", path, err)
					}
					continue
				}
				atomic.AddInt64(&faceCount, int64(found))
				manager.LogQueue() <- fmt.Sprintf("%s: %d faces", filepath.Base(path), found)
			}
			return firstErr
		})
	}
	for _, path := range paths {
		images <- path
	}
	manager.Finish("images")

	// Ordered teardown: workers drain first, then queues, log queue, manager.
	if err := queue.SafeShutdown(
		runner,
		queue.ShutdownFunc(manager.Terminate),
		queue.ShutdownFunc(manager.FlushLog),
		queue.ShutdownFunc(manager.Close),
	); err != nil {
		log.Errorf("Pipeline finished with errors: %v", err)
		os.Exit(1)
	}
	log.WithFields(log.Fields{
		"images": len(paths),
		"faces":  atomic.LoadInt64(&faceCount),
	}).Info("Done")
}

// processImage detects faces on a pre-rotated copy of the image at path,
// corrects every detection back into the original frame and writes an
// annotated copy plus a thumbnail under outDir.
func processImage(classifier *pigo.Pigo, path, outDir string, angle float64, minSize, maxSize int) (int, error) {
	hash, err := imaging.HashImageFile(path)
	if err != nil {
		return 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	img, _, err := imaging.Decode(file)
	file.Close()
	if err != nil {
		return 0, err
	}

	bounds := img.Bounds()
	center := image.Pt(bounds.Dx()/2, bounds.Dy()/2)
	rotated := rotateImage(img, angle)
	detections := detectFaces(classifier, rotated, minSize, maxSize)

	// gg pre-rotates clockwise in screen coordinates while RotationMatrix is
	// counter-clockwise, hence the sign flip.
	matrix := faces.RotationMatrix(center, -angle, 1)
	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(2)
	for _, face := range detections {
		face.R = angle
		if err := faces.CorrectRotation(face, matrix); err != nil {
			return 0, err
		}
		dc.DrawRectangle(float64(face.X), float64(face.Y), float64(face.W), float64(face.H))
		dc.Stroke()
	}

	name := filepath.Base(path)
	ext := filepath.Ext(name)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dc.Image(), ext); err != nil {
		return 0, err
	}
	encoded := buf.Bytes()
	if err := os.WriteFile(filepath.Join(outDir, name), encoded, 0666); err != nil {
		return 0, err
	}
	if err := writeThumb(outDir, name, encoded); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"image": name,
		"hash":  hash,
		"faces": len(detections),
	}).Debug("Processed image")
	return len(detections), nil
}

func detectFaces(classifier *pigo.Pigo, img image.Image, minSize, maxSize int) []*faces.DetectedFace {
	bounds := img.Bounds()
	params := pigo.CascadeParams{
		MinSize:     minSize,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   bounds.Dy(),
			Cols:   bounds.Dx(),
			Dim:    bounds.Dx(),
		},
	}
	detections := classifier.ClusterDetections(classifier.RunCascade(params, 0), 0.2)

	result := []*faces.DetectedFace{}
	for _, det := range detections {
		if det.Q < 5.0 {
			continue
		}
		result = append(result, &faces.DetectedFace{
			X: det.Col - det.Scale/2,
			Y: det.Row - det.Scale/2,
			W: det.Scale,
			H: det.Scale,
		})
	}
	return result
}

func rotateImage(img image.Image, angle float64) image.Image {
	if angle == 0 {
		return img
	}
	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.RotateAbout(gg.Radians(angle), float64(bounds.Dx())/2, float64(bounds.Dy())/2)
	dc.DrawImage(img, 0, 0)
	return dc.Image()
}

func writeThumb(outDir, name string, encoded []byte) error {
	thumbDir, err := utils.GetFolder(filepath.Join(outDir, "thumbs"))
	if err != nil {
		return err
	}
	thumbFile, err := os.Create(filepath.Join(thumbDir, name+".jpg"))
	if err != nil {
		return err
	}
	defer thumbFile.Close()
	_, err = imaging.Thumbnail(uint(config.THUMB_SIZE), bytes.NewReader(encoded), thumbFile)
	return err
}
