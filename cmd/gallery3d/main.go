package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/gallery3d/internal/config"
	"github.com/ivlev/gallery3d/internal/director"
	"github.com/ivlev/gallery3d/internal/engine"
	"github.com/ivlev/gallery3d/internal/loader"
	"github.com/ivlev/gallery3d/internal/source"
	"github.com/ivlev/gallery3d/internal/surface"
	"github.com/ivlev/gallery3d/internal/system"
	"github.com/ivlev/gallery3d/internal/video"
)

// BuildVersion is set with -ldflags "-X main.BuildVersion=...".
var BuildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/images", "input/audio", "output", director.DefaultScriptDir}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Папка с изображениями, PDF или список через запятую (по умолчанию: самая свежая папка в input/images/)")
	configPtr := flag.String("config", "", "YAML-файл настроек галереи")
	dumpConfigPtr := flag.String("dump-config", "", "Записать итоговые настройки в YAML и выйти")
	surfacePtr := flag.String("surface", "", "Поверхность: window, headless, record (по умолчанию window, или record при -output)")
	outputPtr := flag.String("output", "", "Путь к видео для записи (если пусто, генерируется автоматически в output/)")
	snapshotPtr := flag.String("snapshot", "", "PNG последнего кадра (headless/record)")
	widthPtr := flag.Int("width", 1280, "Ширина")
	heightPtr := flag.Int("height", 720, "Высота")
	fpsPtr := flag.Int("fps", 60, "FPS")
	framesPtr := flag.Uint64("frames", 0, "Количество кадров (headless/record, 0 - авто)")
	realtimePtr := flag.Bool("realtime", false, "headless в реальном времени (по часам, а не фиксированным шагом)")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки загрузки изображений")
	dpiPtr := flag.Int("dpi", 150, "DPI для страниц PDF")
	maxTexturePtr := flag.Int("max-texture", 2048, "Максимальная сторона текстуры в пикселях (0 - без ограничения)")
	scriptPtr := flag.String("script", "", "YAML-сценарий ввода (latest - самый свежий в scripts/)")
	genScriptPtr := flag.Bool("generate-script", false, "Сгенерировать пример сценария ввода и выйти")
	scriptDurationPtr := flag.Float64("script-duration", 30, "Длительность генерируемого сценария (сек)")
	audioPtr := flag.String("audio", "", "Аудио для записи (auto - самый свежий файл в input/audio/)")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	fadePtr := flag.Float64("fade", 0.5, "Затемнение в начале и конце записи (сек)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и дописать его в benchmark.log")
	verbosePtr := flag.Bool("v", false, "Подробный журнал движка")

	flag.Parse()

	if *verbosePtr {
		engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		engine.SetLogger(slog.Default())
	}

	width, height := config.PresetSize(*presetPtr, *widthPtr, *heightPtr)

	opts := config.RunOptions{
		ConfigPath:   *configPtr,
		ScriptInput:  *scriptPtr,
		Surface:      *surfacePtr,
		Width:        width,
		Height:       height,
		FPS:          *fpsPtr,
		Frames:       *framesPtr,
		Realtime:     *realtimePtr,
		Workers:      *workersPtr,
		DPI:          *dpiPtr,
		MaxTexture:   *maxTexturePtr,
		OutputVideo:  *outputPtr,
		Snapshot:     *snapshotPtr,
		AudioPath:    *audioPtr,
		Preset:       *presetPtr,
		Quality:      *qualityPtr,
		Fade:         *fadePtr,
		ShowStats:    *statsPtr,
		BuildVersion: BuildVersion,
	}

	if *genScriptPtr {
		script, err := director.NewDirector(opts.Width, opts.Height).Generate(*scriptDurationPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка генерации сценария: %v", err)
		}
		path := director.GenerateScriptPath("")
		if err := director.WriteScript(script, path); err != nil {
			log.Fatalf("[-] Ошибка записи сценария: %v", err)
		}
		fmt.Printf("[+++] Сценарий сохранен: %s (%d событий)\n", path, len(script.Events))
		return
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения настроек: %v", err)
	}
	if *dumpConfigPtr != "" {
		if err := config.Write(cfg, *dumpConfigPtr); err != nil {
			log.Fatalf("[-] Ошибка записи настроек: %v", err)
		}
		fmt.Printf("[+++] Настройки сохранены: %s\n", *dumpConfigPtr)
		return
	}

	if *inputPtr != "" {
		opts.Inputs = strings.Split(*inputPtr, ",")
	} else {
		latest, err := system.FindGalleryInput("input/images")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите изображения в input/images/", err)
		}
		opts.Inputs = []string{latest}
		fmt.Printf("[*] Выбрана галерея: %s\n", latest)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.New(opts.Inputs, opts.DPI)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	fmt.Printf("[>] Загрузка %d изображений (%d потоков)...\n", src.Len(), opts.Workers)
	loadStart := time.Now()
	textures, err := loader.New(src, opts.Workers, opts.MaxTexture).LoadAll(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки изображений: %v", err)
	}
	placeholders := 0
	for _, t := range textures {
		if t.Placeholder {
			placeholders++
		}
	}
	fmt.Printf("[*] Загружено: %d (заглушек: %d) за %.2fs\n", len(textures), placeholders, time.Since(loadStart).Seconds())
	if len(textures) == 0 {
		log.Printf("[!] Галерея пуста, будут показаны пустые кадры")
	}

	var script *director.Script
	if opts.ScriptInput == "latest" {
		opts.ScriptInput, err = director.FindLatestScript("")
		if err != nil {
			log.Fatalf("[-] Ошибка поиска сценария: %v", err)
		}
	}
	if opts.ScriptInput != "" {
		script, err = director.ReadScript(opts.ScriptInput)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения сценария: %v", err)
		}
		fmt.Printf("[*] Используется сценарий: %s\n", opts.ScriptInput)
	}

	if opts.Surface == "" {
		opts.Surface = surface.Window
		if opts.OutputVideo != "" {
			opts.Surface = surface.Record
		}
	}
	if opts.Surface == surface.Record {
		prepareRecording(&opts, script)
	}

	s, err := surface.Open(ctx, opts.Surface, opts, &video.FFmpegEncoder{})
	if err != nil {
		log.Fatalf("[-] Ошибка открытия поверхности: %v", err)
	}

	g, err := engine.New(textures, cfg, s.Renderer, s.Clock)
	if err != nil {
		s.Renderer.Close()
		log.Fatalf("[-] Ошибка инициализации галереи: %v", err)
	}
	for _, in := range s.Inputs {
		g.AddInput(in)
	}
	if script != nil {
		g.AddInput(director.NewPlayer(script))
	}

	fmt.Println("--- [PROJECT: GALLERY 3D] ---")
	fmt.Printf("[*] Поверхность: %s | Изображений: %d | Слотов: %d\n", s.Name, len(textures), len(g.Snapshot()))
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS\n", opts.Width, opts.Height, opts.FPS)
	fmt.Println("-----------------------------")

	runStart := time.Now()
	runErr := g.Run(ctx, s.Scheduler)
	if err := g.Close(); err != nil {
		log.Printf("[!] Ошибка завершения поверхности: %v", err)
	}
	wall := time.Since(runStart)
	if runErr != nil {
		log.Fatalf("[-] Ошибка галереи: %v", runErr)
	}

	if opts.ShowStats {
		printStats(opts, s.Name, len(textures), g.FrameCount(), wall)
	}

	switch {
	case s.Name == surface.Record:
		fmt.Printf("[+++] Успех! Результат: %s\n", opts.OutputVideo)
	case opts.Snapshot != "":
		fmt.Printf("[+++] Успех! Кадр сохранен: %s\n", opts.Snapshot)
	default:
		fmt.Printf("[+++] Готово. Кадров: %d\n", g.FrameCount())
	}
}

// prepareRecording fills in the output path, audio, encoder and frame count
// of a recording.
func prepareRecording(opts *config.RunOptions, script *director.Script) {
	if opts.AudioPath == "auto" {
		opts.AudioPath = ""
		if latest, err := system.FindLatestAudio("input/audio"); err == nil {
			opts.AudioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", latest)
		}
	}

	if opts.OutputVideo == "" {
		nameSource := opts.Inputs[0]
		if opts.AudioPath != "" {
			nameSource = opts.AudioPath
		}
		baseName := filepath.Base(strings.TrimSpace(nameSource))
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		opts.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	if opts.Frames == 0 {
		seconds := 10.0
		if script != nil && script.Duration > 0 {
			seconds = script.Duration
		}
		if opts.AudioPath != "" {
			if audioDur, err := system.GetAudioDuration(opts.AudioPath); err == nil {
				seconds = audioDur
				fmt.Printf("[*] Длительность записи установлена по аудио: %.2fs\n", seconds)
			} else {
				log.Printf("[!] Не удалось получить длительность аудио: %v", err)
			}
		}
		opts.Frames = uint64(seconds * float64(opts.FPS))
	}

	opts.VideoEncoder = system.GetBestH264Encoder()
	if opts.VideoEncoder != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", opts.VideoEncoder)
	}

	if opts.Quality == 0 {
		switch opts.VideoEncoder {
		case "h264_videotoolbox":
			opts.Quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			opts.Quality = 28 // Эквивалент CRF для NVENC
		default:
			opts.Quality = 23 // Стандартный CRF для x264
		}
	}
}

func printStats(opts config.RunOptions, surfaceName string, images int, frames uint64, wall time.Duration) {
	host, err := system.CollectHostStats(200 * time.Millisecond)
	if err != nil {
		log.Printf("[!] Статистика хоста неполная: %v", err)
	}
	_, reuses := system.SharedPoolStats()

	report := system.Report{
		Build:    opts.BuildVersion,
		Input:    strings.Join(opts.Inputs, ","),
		Surface:  surfaceName,
		Images:   images,
		Frames:   frames,
		Wall:     wall,
		Host:     host,
		PoolHits: reuses,
	}
	fmt.Print(report.String())

	// Логирование в файл
	if err := report.AppendLog("benchmark.log"); err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
