// Command tramtrack runs the track detector over a recorded frame sequence
// or video and writes a JSON report and optional debug overlays.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/tram-track-mcp/internal/config"
	imgproc "github.com/ironsheep/tram-track-mcp/internal/imaging"
	"github.com/ironsheep/tram-track-mcp/internal/log"
	"github.com/ironsheep/tram-track-mcp/internal/ocr"
	"github.com/ironsheep/tram-track-mcp/internal/pipeline"
	"github.com/ironsheep/tram-track-mcp/internal/source"
)

// Version information - set by ldflags during build
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tramtrack: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	frames            string
	video             string
	config            string
	out               string
	report            string
	tramCascade       string
	pedestrianCascade string
	ocr               bool
	logLevel          string
	version           bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("tramtrack", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.frames, "frames", "", "directory of frame images, processed in name order")
	fs.StringVar(&o.video, "video", "", "video file (requires a build with -tags gocv)")
	fs.StringVar(&o.config, "config", "", "JSON tuning file")
	fs.StringVar(&o.out, "out", "", "directory for debug overlay PNGs, one per frame")
	fs.StringVar(&o.report, "report", "", "write the JSON report to this file, - for stdout")
	fs.StringVar(&o.tramCascade, "cascade-tram", "", "Haar cascade for the tram ahead (requires gocv)")
	fs.StringVar(&o.pedestrianCascade, "cascade-pedestrian", "", "Haar cascade for pedestrians (requires gocv)")
	fs.BoolVar(&o.ocr, "ocr", false, "read the camera timestamp (requires cgo on linux)")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return &o, nil
}

func (o *options) openFrames() (source.Frames, error) {
	switch {
	case o.frames != "" && o.video != "":
		return nil, errors.New("use either -frames or -video, not both")
	case o.frames != "":
		seq, err := source.OpenImageSequence(o.frames)
		if err != nil {
			return nil, err
		}
		return seq, nil
	case o.video != "":
		v, err := source.OpenVideo(o.video)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, errors.New("one of -frames or -video is required")
	}
}

func (o *options) params() (pipeline.Params, error) {
	params, err := config.LoadParams(o.config)
	if err != nil {
		return params, err
	}
	if o.tramCascade != "" {
		params.TramCascade = o.tramCascade
	}
	if o.pedestrianCascade != "" {
		params.PedestrianCascade = o.pedestrianCascade
	}
	return params, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if o.version {
		fmt.Fprintf(stdout, "tramtrack %s\n", Version)
		return nil
	}
	log.Init(o.logLevel)

	params, err := o.params()
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if o.ocr {
		reader, err := ocr.NewStampReader(ocr.DefaultOptions())
		if err != nil {
			return err
		}
		defer reader.Close()
		opts = append(opts, pipeline.WithStampReader(reader))
	}

	proc, err := pipeline.NewProcessor(params, opts...)
	if err != nil {
		return err
	}
	defer proc.Close()

	frames, err := o.openFrames()
	if err != nil {
		return err
	}
	defer frames.Close()

	if o.out != "" {
		if err := os.MkdirAll(o.out, 0o755); err != nil {
			return fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	sess, err := pipeline.NewSession(proc)
	if err != nil {
		return err
	}

	rep, runErr := pipeline.Run(ctx, sess, frames, func(f source.Frame, res *pipeline.FrameResult) error {
		if o.out == "" {
			return nil
		}
		out := filepath.Join(o.out, fmt.Sprintf("%06d.png", res.Frame))
		if err := imaging.Save(imgproc.Overlay(f.Image, res.OverlayData()), out); err != nil {
			return fmt.Errorf("failed to save overlay: %w", err)
		}
		return nil
	})

	// An interrupted run still reports the frames it got through.
	if o.report != "" {
		if err := writeReport(rep, o.report, stdout); err != nil {
			return err
		}
	}

	sum := rep.Summary()
	log.Info("run finished", "session", sess.ID, "frames", sum.Frames, "errors", sum.Errors,
		"fresh", sum.Fresh, "stale", sum.Stale, "lost", sum.Lost, "mean_ms", sum.MeanElapsedMS)
	return runErr
}

func writeReport(rep *pipeline.Report, path string, stdout io.Writer) error {
	if path == "-" {
		return rep.WriteJSON(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := rep.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
