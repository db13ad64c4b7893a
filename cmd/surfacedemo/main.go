// Command surfacedemo drives a render thread through a surface lifecycle and
// draws its frames with gg.
//
// By default it runs headless: a scripted sequence of mobile app events
// creates a surface, resizes it and requests frames, then the last frame is
// saved as PNG. With -window the same view is hosted in a GLFW window.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/pkg/profile"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/renderthread"
	"github.com/gogpu/renderthread/integration/ggframe"
	"github.com/gogpu/renderthread/platform/glfwapp"
	"github.com/gogpu/renderthread/platform/mobileapp"
)

func init() {
	// GLFW must run on the main OS thread.
	runtime.LockOSThread()
}

type config struct {
	width, height int
	frames        int
	output        string
	window        bool
	continuous    bool
}

func main() {
	var (
		width      = flag.Int("width", 800, "surface width in pixels")
		height     = flag.Int("height", 600, "surface height in pixels")
		frames     = flag.Int("frames", 3, "frames to request in headless mode")
		output     = flag.String("output", "surfacedemo.png", "PNG file for the last frame")
		window     = flag.Bool("window", false, "open a GLFW window instead of running headless")
		continuous = flag.Bool("continuous", false, "render continuously instead of on demand")
		profileDir = flag.String("cpuprofile", "", "write a CPU profile to this directory")
		verbose    = flag.Bool("v", false, "log render thread lifecycle")
	)
	flag.Parse()

	if *verbose {
		renderthread.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	var prof interface{ Stop() }
	if *profileDir != "" {
		prof = profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook)
	}

	err := run(config{
		width:      *width,
		height:     *height,
		frames:     *frames,
		output:     *output,
		window:     *window,
		continuous: *continuous,
	})

	if prof != nil {
		prof.Stop()
	}
	if err != nil {
		log.Fatalf("surfacedemo: %v", err)
	}
}

func run(cfg config) error {
	if cfg.width <= 0 || cfg.height <= 0 {
		return fmt.Errorf("invalid size %dx%d", cfg.width, cfg.height)
	}
	if cfg.frames < 1 {
		return fmt.Errorf("invalid frame count %d", cfg.frames)
	}

	sc, err := newScene()
	if err != nil {
		return err
	}
	defer sc.Close()

	r, err := ggframe.New(sc.draw, ggframe.WithBackground(background))
	if err != nil {
		return err
	}
	defer r.Close()

	mode := renderthread.RenderWhenDirty
	if cfg.continuous {
		mode = renderthread.RenderContinuously
	}
	view, err := renderthread.NewView(r, renderthread.WithRenderMode(mode), renderthread.WithName("surfacedemo"))
	if err != nil {
		return err
	}
	defer view.Close()

	if cfg.window {
		err = runWindow(view, cfg)
	} else {
		err = runHeadless(view, cfg)
	}
	if err != nil {
		return err
	}

	if err := r.SavePNG(cfg.output); err != nil {
		return fmt.Errorf("save %s: %w", cfg.output, err)
	}
	if err := view.Detach(); err != nil {
		return err
	}
	printSummary(cfg.output)
	return nil
}

func runHeadless(view *renderthread.View, cfg config) error {
	events := make(chan any, cfg.frames+2)
	events <- lifecycle.Event{From: lifecycle.StageDead, To: lifecycle.StageFocused}
	events <- size.Event{WidthPx: cfg.width, HeightPx: cfg.height, PixelsPerPt: 1}
	for range cfg.frames - 1 {
		events <- paint.Event{}
	}
	close(events)

	if err := mobileapp.Run(view, gputypes.TextureFormatRGBA8Unorm, events); err != nil {
		return err
	}
	return waitForFrame(view, 5*time.Second)
}

func runWindow(view *renderthread.View, cfg config) error {
	w, err := glfwapp.Open(view, cfg.width, cfg.height, "surfacedemo", gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		return err
	}
	w.Run()
	// Read the frame before Close detaches the view.
	if err := waitForFrame(view, 5*time.Second); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// waitForFrame requests one more frame and waits until it has been drawn.
func waitForFrame(view *renderthread.View, timeout time.Duration) error {
	done := make(chan struct{})
	if err := view.RedrawNeededAsync(func() { close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("no frame within %v", timeout)
	}
}

func printSummary(output string) {
	p := message.NewPrinter(language.English)
	for _, info := range renderthread.Recent() {
		s := info.Stats
		p.Printf("%s: %d frames, %d failed, avg %v, max %v, %.1f fps, ran %v\n",
			info.Name, s.Frames, s.Failures,
			s.AverageDuration.Round(time.Microsecond),
			s.MaxDuration.Round(time.Microsecond),
			s.FPS(),
			info.ExitedAt.Sub(info.StartedAt).Round(time.Millisecond),
		)
	}
	p.Printf("last frame saved to %s\n", output)
}
