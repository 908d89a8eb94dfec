package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/integrii/flaggy"
	"github.com/joho/godotenv"

	"github.com/wavedeck/wavedeck"
	"github.com/wavedeck/wavedeck/internal/audioclock"
	"github.com/wavedeck/wavedeck/internal/envelope"
	"github.com/wavedeck/wavedeck/internal/source"
)

const (
	windowW    = 1000
	windowH    = 460
	minWindowW = 640
	minWindowH = 360

	pad       = 16
	headerH   = 48
	mainViewH = 260
	minimapH  = 72
	textScale = 2
)

var (
	bgColor     = color.RGBA{18, 19, 24, 255}
	panelColor  = color.RGBA{10, 11, 14, 255}
	borderColor = color.RGBA{70, 74, 90, 255}
)

type app struct {
	clock    *audioclock.Clock
	main     *wavedeck.View
	minimap  *wavedeck.View
	header   string
	duration float64

	scale        float64
	viewW, viewH int // device pixels

	active     *wavedeck.View
	activeRect image.Rectangle

	textCache map[string]*ebiten.Image
}

type layout struct {
	main, minimap image.Rectangle
}

func (a *app) layoutRects() layout {
	s := a.scale
	p := int(pad * s)
	w := a.viewW - 2*p
	if w < 1 {
		w = 1
	}
	mainTop := int((pad + headerH) * s)
	mainRect := image.Rect(p, mainTop, p+w, mainTop+int(mainViewH*s))
	miniTop := mainRect.Max.Y + int(12*s)
	miniRect := image.Rect(p, miniTop, p+w, miniTop+int(minimapH*s))
	return layout{main: mainRect, minimap: miniRect}
}

func (a *app) Update() error {
	l := a.layoutRects()
	if err := a.main.SetSize(l.main.Dx(), l.main.Dy(), a.scale); err != nil {
		return err
	}
	if err := a.minimap.SetSize(l.minimap.Dx(), l.minimap.Dy(), a.scale); err != nil {
		return err
	}

	a.main.Tick()
	a.minimap.Tick()
	a.handleKeys()
	a.handleMouse(l)
	return nil
}

func (a *app) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if a.clock.Playing() {
			a.clock.Pause()
		} else {
			a.clock.Play()
		}
	}
}

func (a *app) handleMouse(l layout) {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.main):
			a.active, a.activeRect = a.main, l.main
		case pointInRect(mx, my, l.minimap):
			a.active, a.activeRect = a.minimap, l.minimap
		default:
			a.active = nil
		}
		if a.active != nil {
			a.active.PointerDown(mx-a.activeRect.Min.X, my-a.activeRect.Min.Y)
		}
	}

	// Moves and the release are delivered to the view that took the press
	// even when the cursor has left it, so a drag never gets stuck.
	if a.active != nil {
		x, y := mx-a.activeRect.Min.X, my-a.activeRect.Min.Y
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			a.active.PointerMove(x, y)
		} else {
			a.active.PointerUp(x, y)
			a.active = nil
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		if pointInRect(mx, my, l.main) {
			a.main.Wheel(wy)
		}
	}
}

func (a *app) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := a.layoutRects()

	a.drawPanel(screen, l.main)
	a.drawPanel(screen, l.minimap)
	a.main.Draw(screen, l.main.Min.X, l.main.Min.Y)
	a.minimap.Draw(screen, l.minimap.Min.X, l.minimap.Min.Y)

	s := a.scale
	a.drawText(screen, a.header, int(pad*s), int(pad*s))
	status := fmt.Sprintf("%s / %s   zoom %.1fx   [space] play/pause  [wheel] zoom  [drag] scrub",
		fmtTime(a.clock.Position()), fmtTime(a.duration), a.main.Zoom())
	a.drawText(screen, status, int(pad*s), l.minimap.Max.Y+int(10*s))
}

func (a *app) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth < minWindowW {
		outsideWidth = minWindowW
	}
	if outsideHeight < minWindowH {
		outsideHeight = minWindowH
	}
	s := ebiten.Monitor().DeviceScaleFactor()
	a.scale = s
	a.viewW = int(float64(outsideWidth) * s)
	a.viewH = int(float64(outsideHeight) * s)
	return a.viewW, a.viewH
}

func (a *app) drawPanel(screen *ebiten.Image, rect image.Rectangle) {
	x, y := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())
	b := a.scale
	ebitenutil.DrawRect(screen, x-b, y-b, w+2*b, h+2*b, borderColor)
	ebitenutil.DrawRect(screen, x, y, w, h, panelColor)
}

func (a *app) drawText(screen *ebiten.Image, msg string, x, y int) {
	if msg == "" {
		return
	}
	img := a.textCache[msg]
	if img == nil {
		w := len(msg) * 7
		if w < 1 {
			w = 7
		}
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(a.textCache) > 256 {
			a.textCache = make(map[string]*ebiten.Image, 64)
		}
		a.textCache[msg] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale*a.scale/2, textScale*a.scale/2)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

func fmtTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func trackHeader(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return filepath.Base(path)
	}
	defer f.Close()
	m, err := tag.ReadFrom(f)
	if err != nil || m.Title() == "" {
		return filepath.Base(path)
	}
	if m.Artist() != "" {
		return m.Artist() + " - " + m.Title()
	}
	return m.Title()
}

func main() {
	log.SetFlags(0)

	// .env supplies defaults; flags override.
	_ = godotenv.Load()
	server := os.Getenv("WAVEDECK_SERVER")

	var (
		audioPath string
		trackID   int
		marker    = 0.25
		maxZoom   = 50.0
		cue       = -1.0
	)
	flaggy.SetName("wavedeck")
	flaggy.SetDescription("multi-band waveform viewer for DJ library tracks")
	flaggy.AddPositionalValue(&audioPath, "file", 1, true, "audio file to play (mp3/wav/flac)")
	flaggy.String(&server, "s", "server", "library backend base URL (envelope is fetched instead of computed)")
	flaggy.Int(&trackID, "t", "track", "backend track id, used with --server")
	flaggy.Float64(&marker, "m", "marker", "playhead position as a fraction of the view width")
	flaggy.Float64(&maxZoom, "z", "max-zoom", "maximum zoom factor")
	flaggy.Float64(&cue, "c", "cue", "cue point in seconds")
	flaggy.Parse()

	clock, err := audioclock.Open(audioPath)
	if err != nil {
		log.Fatalf("open %q: %v", audioPath, err)
	}
	defer clock.Close()

	var (
		env    *envelope.Envelope
		cuePtr *float64
	)
	if server != "" && trackID > 0 {
		env, cuePtr, err = source.NewClient(server).Waveform(context.Background(), trackID)
		switch {
		case errors.Is(err, source.ErrPending):
			log.Fatalf("waveform for track %d is still being generated, try again shortly", trackID)
		case errors.Is(err, source.ErrNotFound):
			log.Fatalf("track %d not found on %s", trackID, server)
		case err != nil:
			log.Fatalf("fetch waveform: %v", err)
		}
	} else {
		pcm, sampleRate, err := audioclock.DecodePCM(audioPath)
		if err != nil {
			log.Fatalf("decode %q: %v", audioPath, err)
		}
		env, err = envelope.Generate(pcm, sampleRate)
		if err != nil {
			log.Fatalf("generate envelope: %v", err)
		}
	}
	if cue >= 0 {
		cuePtr = &cue
	}

	mainOpts := []wavedeck.Option{
		wavedeck.WithPlayMarker(marker),
		wavedeck.WithZoomRange(0.5, maxZoom),
	}
	miniOpts := []wavedeck.Option{wavedeck.WithMinimap()}
	if cuePtr != nil {
		mainOpts = append(mainOpts, wavedeck.WithCuePoint(*cuePtr))
		miniOpts = append(miniOpts, wavedeck.WithCuePoint(*cuePtr))
	}

	mainView, err := wavedeck.New(env, clock, mainOpts...)
	if err != nil {
		log.Fatalf("main view: %v", err)
	}
	minimapView, err := wavedeck.New(env, clock, miniOpts...)
	if err != nil {
		log.Fatalf("minimap view: %v", err)
	}
	mainView.Start()
	minimapView.Start()
	defer mainView.Close()
	defer minimapView.Close()

	a := &app{
		clock:     clock,
		main:      mainView,
		minimap:   minimapView,
		header:    trackHeader(audioPath),
		duration:  clock.Duration(),
		scale:     1,
		textCache: make(map[string]*ebiten.Image, 64),
	}

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("wavedeck - " + a.header)
	if err := ebiten.RunGame(a); err != nil {
		log.Fatal(err)
	}
}
